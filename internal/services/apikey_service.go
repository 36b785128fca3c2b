package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/taskaza-api/internal/constants"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"github.com/yukikurage/taskaza-api/internal/utils"
)

// APIKeyService manages the lifecycle of user API keys: creation with hashed
// storage, listing, one-way revocation and verification.
type APIKeyService struct {
	repo   repository.APIKeyRepository
	hasher SecretHasher
	now    func() time.Time
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(repo repository.APIKeyRepository, hasher SecretHasher) *APIKeyService {
	return &APIKeyService{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

// Create issues a new key for user. The returned raw key is the only copy
// that will ever exist; only its hash and prefix are stored.
func (s *APIKeyService) Create(ctx context.Context, user *models.User) (string, *models.APIKey, error) {
	rawKey, err := utils.GenerateToken(constants.APIKeyBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	hashed, err := s.hasher.Hash(rawKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash api key: %w", err)
	}

	key := &models.APIKey{
		UserID:    user.ID,
		HashedKey: hashed,
		Prefix:    rawKey[:constants.APIKeyPrefixLen],
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return "", nil, fmt.Errorf("failed to store api key: %w", err)
	}

	return rawKey, key, nil
}

// List returns all keys of user, active and revoked.
func (s *APIKeyService) List(ctx context.Context, user *models.User) ([]models.APIKey, error) {
	keys, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

// Revoke disables a key owned by user. It returns false without changing
// anything when the key does not exist or belongs to another user; callers
// cannot tell the two apart.
func (s *APIKeyService) Revoke(ctx context.Context, user *models.User, keyID uint64) (bool, error) {
	ok, err := s.repo.Revoke(ctx, user.ID, keyID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke api key: %w", err)
	}
	return ok, nil
}

// Verify checks rawKey against the user's active keys and returns the match,
// or nil when none matches. A match records the time of use.
//
// Keys are scanned linearly since each user holds only a handful. Should that
// change, an indexed fingerprint column (not the display prefix) is the way
// to narrow the scan.
func (s *APIKeyService) Verify(ctx context.Context, user *models.User, rawKey string) (*models.APIKey, error) {
	if rawKey == "" {
		return nil, nil
	}

	keys, err := s.repo.ListActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load api keys: %w", err)
	}

	for i := range keys {
		key := &keys[i]
		if !key.IsActive() || !s.hasher.Verify(rawKey, key.HashedKey) {
			continue
		}

		usedAt := s.now().UTC()
		if err := s.repo.TouchLastUsed(ctx, key.ID, usedAt); err != nil {
			return nil, fmt.Errorf("failed to record api key use: %w", err)
		}
		key.LastUsedAt = &usedAt
		return key, nil
	}

	return nil, nil
}
