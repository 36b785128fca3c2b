package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/auth"
	"github.com/yukikurage/taskaza-api/internal/constants"
	apierrors "github.com/yukikurage/taskaza-api/internal/errors"
	"github.com/yukikurage/taskaza-api/internal/logger"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/services"
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserResolver maps a token subject to its user.
type UserResolver interface {
	ResolveUser(ctx context.Context, username string) (*models.User, error)
}

// RequireAuth checks the bearer token and loads the current user
func RequireAuth(tokens TokenVerifier, resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(constants.HeaderAuthorization))
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		username, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenExpired, "Token has expired")
			} else {
				apierrors.Unauthorized(c, "Could not validate credentials")
			}
			c.Abort()
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), username)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.NotFound(c, "User not found")
			} else {
				log := logger.FromContext(c)
				log.Error().Err(err).Msg("failed to resolve user")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
