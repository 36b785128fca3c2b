package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/taskaza-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAPIKeyRepository is a GORM implementation of APIKeyRepository
type GormAPIKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &GormAPIKeyRepository{db: db}
}

// Create stores a new key record
func (r *GormAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

// ListByUser returns every key of a user, revoked ones included
func (r *GormAPIKeyRepository) ListByUser(ctx context.Context, userID uint64) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// ListActiveByUser returns the user's non-revoked keys
func (r *GormAPIKeyRepository) ListActiveByUser(ctx context.Context, userID uint64) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ?", userID, false).
		Order("id ASC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// Revoke marks a key as revoked inside a single transaction. Missing keys and
// keys owned by someone else both report false.
func (r *GormAPIKeyRepository) Revoke(ctx context.Context, userID, keyID uint64) (bool, error) {
	revoked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var key models.APIKey
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", keyID, userID).
			First(&key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if !key.Revoked {
			if err := tx.Model(&key).Update("revoked", true).Error; err != nil {
				return err
			}
		}
		revoked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return revoked, nil
}

// TouchLastUsed records a successful verification
func (r *GormAPIKeyRepository) TouchLastUsed(ctx context.Context, keyID uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", keyID).
		UpdateColumn("last_used_at", at).Error
}
