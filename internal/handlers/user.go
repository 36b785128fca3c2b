package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/dto"
	"github.com/yukikurage/taskaza-api/internal/services"
)

// UserHandler serves the current user's profile.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type updateProfileRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ReplaceMe replaces the profile. Omitted email or display name are cleared.
func (h *UserHandler) ReplaceMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	empty := ""
	if req.Email == nil {
		req.Email = &empty
	}
	if req.DisplayName == nil {
		req.DisplayName = &empty
	}

	h.updateProfile(c, req)
}

// PatchMe updates only the provided profile fields.
func (h *UserHandler) PatchMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	h.updateProfile(c, req)
}

// DeleteMe removes the account together with its tasks and API keys.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), user); err != nil {
		respondAuthError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) updateProfile(c *gin.Context, req updateProfileRequest) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user, services.UpdateProfileInput{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*updated))
}
