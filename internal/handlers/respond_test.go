package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskaza-api/internal/constants"
	"github.com/yukikurage/taskaza-api/internal/models"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() {
		log.Logger = previous
	})
	return &buf
}

func TestInternalError_LogsCaller(t *testing.T) {
	buf := captureLogs(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	c.Set(constants.ContextKeyRequestID, "req-1")
	c.Set(constants.ContextKeyUser, &models.User{ID: 7, Username: "alice"})
	c.Set(constants.ContextKeyAPIKey, &models.APIKey{ID: 3, Prefix: "abcd1234"})

	internalError(c, errors.New("db down"), "Failed to list tasks")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")

	logged := buf.String()
	assert.Contains(t, logged, `"request_id":"req-1"`)
	assert.Contains(t, logged, `"user_id":7`)
	assert.Contains(t, logged, `"api_key_id":3`)
	assert.Contains(t, logged, `"api_key_prefix":"abcd1234"`)
	assert.Contains(t, logged, `"error":"db down"`)
}

func TestRequestLog_Anonymous(t *testing.T) {
	buf := captureLogs(t)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)

	reqLog := requestLog(c)
	reqLog.Info().Msg("hello")

	assert.NotContains(t, buf.String(), "user_id")
	assert.NotContains(t, buf.String(), "api_key_id")
}
