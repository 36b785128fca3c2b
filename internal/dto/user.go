package dto

import (
	"time"

	"github.com/yukikurage/taskaza-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID            uint64    `json:"id"`
	Username      string    `json:"username"`
	Email         *string   `json:"email"`
	DisplayName   *string   `json:"display_name"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// VerificationRequestResponse is returned when a verification token is issued.
// Token is only set when tokens are handed back inline.
type VerificationRequestResponse struct {
	Message   string     `json:"message"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// MessageResponse carries a plain status message
type MessageResponse struct {
	Message string `json:"message"`
}
