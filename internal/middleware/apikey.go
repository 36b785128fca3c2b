package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/constants"
	apierrors "github.com/yukikurage/taskaza-api/internal/errors"
	"github.com/yukikurage/taskaza-api/internal/logger"
	"github.com/yukikurage/taskaza-api/internal/models"
)

// APIKeyVerifier checks a raw API key against a user's active keys.
type APIKeyVerifier interface {
	Verify(ctx context.Context, user *models.User, rawKey string) (*models.APIKey, error)
}

// RequireAPIKey checks the X-API-Key header of an authenticated request.
// It must be mounted after RequireAuth.
func RequireAPIKey(keys APIKeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		rawKey := c.GetHeader(constants.HeaderAPIKey)
		if rawKey == "" {
			apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeAPIKeyMissing, "API Key header missing")
			c.Abort()
			return
		}

		key, err := keys.Verify(c.Request.Context(), user, rawKey)
		if err != nil {
			log := logger.FromContext(c)
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to verify api key")
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}
		if key == nil {
			apierrors.ForbiddenWithCode(c, apierrors.ErrCodeInvalidAPIKey, "Invalid API Key")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAPIKey, key)
		c.Next()
	}
}

// GetCurrentAPIKey retrieves the verified API key from context
func GetCurrentAPIKey(c *gin.Context) (*models.APIKey, bool) {
	value, exists := c.Get(constants.ContextKeyAPIKey)
	if !exists {
		return nil, false
	}

	key, ok := value.(*models.APIKey)
	return key, ok && key != nil
}
