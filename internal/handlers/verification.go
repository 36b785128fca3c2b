package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/dto"
	apierrors "github.com/yukikurage/taskaza-api/internal/errors"
	"github.com/yukikurage/taskaza-api/internal/services"
)

// VerificationHandler serves email verification.
type VerificationHandler struct {
	verification *services.VerificationService
	// exposeToken returns issued tokens in the response body.
	exposeToken bool
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verification *services.VerificationService, exposeToken bool) *VerificationHandler {
	return &VerificationHandler{
		verification: verification,
		exposeToken:  exposeToken,
	}
}

// RequestVerification issues a verification token for the current user.
func (h *VerificationHandler) RequestVerification(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.verification.RequestVerification(c.Request.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailAlreadyVerified):
			c.JSON(http.StatusOK, dto.VerificationRequestResponse{Message: "Email already verified"})
		case errors.Is(err, services.ErrEmailMissing):
			apierrors.BadRequest(c, "No email address on file")
		default:
			internalError(c, err, "Failed to issue verification token")
		}
		return
	}

	resp := dto.VerificationRequestResponse{Message: "Verification token issued"}
	if h.exposeToken {
		resp.Token = result.Token
		resp.ExpiresAt = &result.ExpiresAt
	}
	c.JSON(http.StatusOK, resp)
}

// Verify consumes a verification token. No authentication is required.
func (h *VerificationHandler) Verify(c *gin.Context) {
	type VerifyRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	if _, err := h.verification.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, services.ErrInvalidVerificationToken) {
			apierrors.RespondWithError(c, http.StatusBadRequest,
				apierrors.NewAPIError(apierrors.ErrCodeInvalidToken, "Invalid or expired token"))
			return
		}
		internalError(c, err, "Failed to verify email")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email verified"})
}
