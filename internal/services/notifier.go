package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/taskaza-api/internal/models"
)

// Notifier delivers email verification tokens to their owner. A mail-backed
// implementation plugs in here.
type Notifier interface {
	NotifyVerification(ctx context.Context, user *models.User, token string, expiresAt time.Time) error
}

// LogNotifier records that a verification token was issued. The token itself
// is never logged.
type LogNotifier struct{}

// NotifyVerification implements Notifier.
func (LogNotifier) NotifyVerification(_ context.Context, user *models.User, _ string, expiresAt time.Time) error {
	log.Info().
		Uint64("user_id", user.ID).
		Time("expires_at", expiresAt).
		Msg("email verification token issued")
	return nil
}
