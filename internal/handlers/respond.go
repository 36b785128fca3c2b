package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/taskaza-api/internal/errors"
	"github.com/yukikurage/taskaza-api/internal/logger"
	"github.com/yukikurage/taskaza-api/internal/middleware"
	"github.com/yukikurage/taskaza-api/internal/models"
)

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return user, true
}

// requestLog returns the request logger tagged with the caller's user and API key.
func requestLog(c *gin.Context) zerolog.Logger {
	fields := logger.FromContext(c).With()
	if user, ok := middleware.GetCurrentUser(c); ok {
		fields = fields.Uint64("user_id", user.ID)
	}
	if key, ok := middleware.GetCurrentAPIKey(c); ok {
		fields = fields.Uint64("api_key_id", key.ID).Str("api_key_prefix", key.Prefix)
	}
	return fields.Logger()
}

// internalError logs err and writes a 500 without exposing it.
func internalError(c *gin.Context, err error, message string) {
	log := requestLog(c)
	log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	apierrors.InternalError(c, message)
}

// invalidBody writes a 400 for a failed bind, listing the failing fields
// when the body parsed but did not validate.
func invalidBody(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	details := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = fe.Tag()
	}
	apierrors.BadRequestWithDetails(c, "Validation failed", details)
}
