package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/taskaza-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByVerificationTokenHash finds the user holding a pending verification token
func (r *GormUserRepository) FindByVerificationTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	return r.first(ctx, "verification_token_hash = ?", tokenHash)
}

// UpdateColumns writes only the named columns of user
func (r *GormUserRepository) UpdateColumns(ctx context.Context, user *models.User, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(user).Select(columns).Updates(user).Error
}

// SetVerificationToken stores a pending token unless the email is already verified
func (r *GormUserRepository) SetVerificationToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND email_verified = ?", userID, false).
		Updates(map[string]interface{}{
			"verification_token_hash":       tokenHash,
			"verification_token_expires_at": expiresAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ConsumeVerificationToken marks the email verified and clears the token in a
// single conditional write
func (r *GormUserRepository) ConsumeVerificationToken(ctx context.Context, userID uint64, tokenHash string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verification_token_hash = ? AND verification_token_expires_at > ?", userID, tokenHash, now).
		Updates(map[string]interface{}{
			"email_verified":                true,
			"verification_token_hash":       nil,
			"verification_token_expires_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete removes a user together with their tasks and API keys
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.APIKey{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
