package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskaza-api/internal/auth"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"github.com/yukikurage/taskaza-api/internal/services"
	"github.com/yukikurage/taskaza-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type gateTestEnv struct {
	tokens  *auth.TokenManager
	authSvc *services.AuthService
	keys    *services.APIKeyService
	tasks   *services.TaskService
	user    *models.User
	rawKey  string
	keyID   uint64
	router  *gin.Engine
}

func setupGateTestEnv(t *testing.T) gateTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	hasher := auth.NewHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager([]byte("test-secret"), 30*time.Minute, "taskaza")
	authSvc := services.NewAuthService(repository.NewUserRepository(db), hasher)
	keys := services.NewAPIKeyService(repository.NewAPIKeyRepository(db), hasher)
	tasks := services.NewTaskService(repository.NewTaskRepository(db), nil)

	user, err := authSvc.Signup(context.Background(), services.SignupInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	rawKey, key, err := keys.Create(context.Background(), user)
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("/", RequireAuth(tokens, authSvc))
	protected.GET("/me", func(c *gin.Context) {
		current, ok := GetCurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": current.Username})
	})
	keyed := protected.Group("/", RequireAPIKey(keys))
	keyed.GET("/secure", func(c *gin.Context) {
		key, ok := GetCurrentAPIKey(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"key_id": key.ID})
	})
	keyed.GET("/tasks/:id", RequireTaskAccess(tasks), func(c *gin.Context) {
		task, ok := GetCurrentTask(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"title": task.Title})
	})

	return gateTestEnv{
		tokens:  tokens,
		authSvc: authSvc,
		keys:    keys,
		tasks:   tasks,
		user:    user,
		rawKey:  rawKey,
		keyID:   key.ID,
		router:  r,
	}
}

func (env gateTestEnv) bearer(t *testing.T, username string) string {
	t.Helper()
	token, _, err := env.tokens.Issue(username)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(r http.Handler, path, authorization, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

func TestRequireAuth(t *testing.T) {
	env := setupGateTestEnv(t)

	w := doRequest(env.router, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = doRequest(env.router, "/me", "Basic YWxpY2U6cHcx", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(env.router, "/me", "Bearer not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = doRequest(env.router, "/me", env.bearer(t, "ghost"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	w = doRequest(env.router, "/me", env.bearer(t, "alice"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	env := setupGateTestEnv(t)

	expired := auth.NewTokenManager([]byte("test-secret"), -time.Minute, "taskaza")
	token, _, err := expired.Issue("alice")
	require.NoError(t, err)

	w := doRequest(env.router, "/me", "Bearer "+token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, w))
}

func TestRequireAPIKey_FailureClasses(t *testing.T) {
	env := setupGateTestEnv(t)
	bearer := env.bearer(t, "alice")

	// Bearer failure wins even with a valid key.
	w := doRequest(env.router, "/secure", "", env.rawKey)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = doRequest(env.router, "/secure", bearer, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "API_KEY_MISSING", errorCode(t, w))

	w = doRequest(env.router, "/secure", bearer, "invalid-key")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "INVALID_API_KEY", errorCode(t, w))

	w = doRequest(env.router, "/secure", bearer, env.rawKey)
	assert.Equal(t, http.StatusOK, w.Code)

	ok, err := env.keys.Revoke(context.Background(), env.user, env.keyID)
	require.NoError(t, err)
	require.True(t, ok)

	w = doRequest(env.router, "/secure", bearer, env.rawKey)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAPIKey_OtherUsersKeyIsForbidden(t *testing.T) {
	env := setupGateTestEnv(t)

	_, err := env.authSvc.Signup(context.Background(), services.SignupInput{Username: "bob", Password: "pw2"})
	require.NoError(t, err)

	w := doRequest(env.router, "/secure", env.bearer(t, "bob"), env.rawKey)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type failingKeys struct{}

func (failingKeys) Verify(context.Context, *models.User, string) (*models.APIKey, error) {
	return nil, errors.New("connection reset")
}

func TestRequireAPIKey_StorageErrorIsInternal(t *testing.T) {
	r := gin.New()
	r.GET("/secure", func(c *gin.Context) {
		c.Set("current_user", &models.User{ID: 1, Username: "alice"})
	}, RequireAPIKey(failingKeys{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := doRequest(r, "/secure", "", "some-key")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireTaskAccess(t *testing.T) {
	env := setupGateTestEnv(t)
	bearer := env.bearer(t, "alice")

	task, err := env.tasks.CreateTask(context.Background(), services.CreateTaskInput{Title: "Mine", UserID: env.user.ID})
	require.NoError(t, err)

	bob, err := env.authSvc.Signup(context.Background(), services.SignupInput{Username: "bob", Password: "pw2"})
	require.NoError(t, err)
	foreign, err := env.tasks.CreateTask(context.Background(), services.CreateTaskInput{Title: "Theirs", UserID: bob.ID})
	require.NoError(t, err)

	w := doRequest(env.router, "/tasks/abc", bearer, env.rawKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(env.router, "/tasks/"+uintToString(foreign.ID), bearer, env.rawKey)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(env.router, "/tasks/"+uintToString(task.ID), bearer, env.rawKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mine")
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)

	_, ok = bearerToken("abc")
	assert.False(t, ok)
}

func uintToString(v uint64) string {
	return strconv.FormatUint(v, 10)
}
