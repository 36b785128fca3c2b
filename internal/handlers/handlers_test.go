package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskaza-api/internal/auth"
	"github.com/yukikurage/taskaza-api/internal/middleware"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"github.com/yukikurage/taskaza-api/internal/services"
	"github.com/yukikurage/taskaza-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerTestEnv struct {
	db           *gorm.DB
	tokens       *auth.TokenManager
	authService  *services.AuthService
	apiKeys      *services.APIKeyService
	verification *services.VerificationService
	tasks        *services.TaskService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	hasher := auth.NewHasher(bcrypt.MinCost)
	userRepo := repository.NewUserRepository(db)

	return handlerTestEnv{
		db:           db,
		tokens:       auth.NewTokenManager([]byte("handler-test-secret"), 30*time.Minute, "taskaza"),
		authService:  services.NewAuthService(userRepo, hasher),
		apiKeys:      services.NewAPIKeyService(repository.NewAPIKeyRepository(db), hasher),
		verification: services.NewVerificationService(userRepo, services.LogNotifier{}, time.Hour),
		tasks:        services.NewTaskService(repository.NewTaskRepository(db), nil),
	}
}

func (env handlerTestEnv) requireAuth() gin.HandlerFunc {
	return middleware.RequireAuth(env.tokens, env.authService)
}

func (env handlerTestEnv) requireAPIKey() gin.HandlerFunc {
	return middleware.RequireAPIKey(env.apiKeys)
}

func (env handlerTestEnv) requireTask() gin.HandlerFunc {
	return middleware.RequireTaskAccess(env.tasks)
}

func (env handlerTestEnv) signup(t *testing.T, username string, email *string) *models.User {
	t.Helper()
	user, err := env.authService.Signup(context.Background(), services.SignupInput{
		Username: username,
		Password: "supersecret",
		Email:    email,
	})
	require.NoError(t, err)
	return user
}

func (env handlerTestEnv) bearer(t *testing.T, username string) string {
	t.Helper()
	token, _, err := env.tokens.Issue(username)
	require.NoError(t, err)
	return "Bearer " + token
}

func (env handlerTestEnv) apiKey(t *testing.T, user *models.User) string {
	t.Helper()
	rawKey, _, err := env.apiKeys.Create(context.Background(), user)
	require.NoError(t, err)
	return rawKey
}

type headers map[string]string

func performRequest(r http.Handler, method, path string, body interface{}, h headers) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range h {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func strPtr(s string) *string {
	return &s
}
