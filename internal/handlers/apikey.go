package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/dto"
	apierrors "github.com/yukikurage/taskaza-api/internal/errors"
	"github.com/yukikurage/taskaza-api/internal/services"
)

// APIKeyHandler manages the current user's API keys.
type APIKeyHandler struct {
	keys *services.APIKeyService
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(keys *services.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

// CreateAPIKey issues a key. The raw key is in this response only.
func (h *APIKeyHandler) CreateAPIKey(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rawKey, key, err := h.keys.Create(c.Request.Context(), user)
	if err != nil {
		internalError(c, err, "Failed to create API key")
		return
	}

	c.JSON(http.StatusCreated, dto.APIKeyCreatedDTO{
		APIKeyDTO: dto.ToAPIKeyDTO(*key),
		Key:       rawKey,
	})
}

// ListAPIKeys returns all keys of the current user.
func (h *APIKeyHandler) ListAPIKeys(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	keys, err := h.keys.List(c.Request.Context(), user)
	if err != nil {
		internalError(c, err, "Failed to list API keys")
		return
	}

	c.JSON(http.StatusOK, dto.ToAPIKeyDTOs(keys))
}

// RevokeAPIKey revokes one of the current user's keys.
func (h *APIKeyHandler) RevokeAPIKey(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// A malformed id cannot name a key the caller owns.
	keyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.NotFound(c, "API key not found")
		return
	}

	revoked, err := h.keys.Revoke(c.Request.Context(), user, keyID)
	if err != nil {
		internalError(c, err, "Failed to revoke API key")
		return
	}
	if !revoked {
		apierrors.NotFound(c, "API key not found")
		return
	}

	c.Status(http.StatusNoContent)
}
