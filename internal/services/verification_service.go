package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/taskaza-api/internal/constants"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"github.com/yukikurage/taskaza-api/internal/utils"
)

var (
	ErrEmailAlreadyVerified     = errors.New("email already verified")
	ErrEmailMissing             = errors.New("no email address on file")
	ErrInvalidVerificationToken = errors.New("invalid or expired token")
)

// VerificationService issues and consumes single-use email verification tokens.
type VerificationService struct {
	userRepo repository.UserRepository
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(userRepo repository.UserRepository, notifier Notifier, ttl time.Duration) *VerificationService {
	return &VerificationService{
		userRepo: userRepo,
		notifier: notifier,
		ttl:      ttl,
		now:      time.Now,
	}
}

// VerificationResult is the outcome of a verification request.
type VerificationResult struct {
	Token     string
	ExpiresAt time.Time
}

// RequestVerification issues a fresh token for user, replacing any pending one,
// and hands it to the notifier.
func (s *VerificationService) RequestVerification(ctx context.Context, user *models.User) (*VerificationResult, error) {
	if user.EmailVerified {
		return nil, ErrEmailAlreadyVerified
	}
	if user.Email == nil {
		return nil, ErrEmailMissing
	}

	token, err := utils.GenerateToken(constants.VerificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	tokenHash := utils.Fingerprint(token)
	expiresAt := s.now().UTC().Add(s.ttl)
	stored, err := s.userRepo.SetVerificationToken(ctx, user.ID, tokenHash, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store verification token: %w", err)
	}
	if !stored {
		// Verified by a concurrent request since user was loaded.
		return nil, ErrEmailAlreadyVerified
	}
	user.VerificationTokenHash = &tokenHash
	user.VerificationTokenExpiresAt = &expiresAt

	if err := s.notifier.NotifyVerification(ctx, user, token, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to deliver verification token: %w", err)
	}

	return &VerificationResult{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyEmail consumes token and marks its owner's email as verified.
func (s *VerificationService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidVerificationToken
	}

	tokenHash := utils.Fingerprint(token)
	user, err := s.userRepo.FindByVerificationTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidVerificationToken
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	now := s.now().UTC()
	if user.VerificationTokenExpiresAt == nil || !now.Before(*user.VerificationTokenExpiresAt) {
		return nil, ErrInvalidVerificationToken
	}

	consumed, err := s.userRepo.ConsumeVerificationToken(ctx, user.ID, tokenHash, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidVerificationToken
	}

	verified, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload verified user: %w", err)
	}
	return verified, nil
}
