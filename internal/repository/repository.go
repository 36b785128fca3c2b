package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/taskaza-api/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByVerificationTokenHash finds the user holding a pending verification token
	FindByVerificationTokenHash(ctx context.Context, tokenHash string) (*models.User, error)

	// UpdateColumns writes only the named columns of user
	UpdateColumns(ctx context.Context, user *models.User, columns ...string) error

	// SetVerificationToken stores a pending verification token. It reports
	// false when the user is missing or already verified.
	SetVerificationToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) (bool, error)

	// ConsumeVerificationToken verifies the user's email if tokenHash is still
	// pending and unexpired at now. It reports false when the token was
	// already used, replaced or expired.
	ConsumeVerificationToken(ctx context.Context, userID uint64, tokenHash string, now time.Time) (bool, error)

	// Delete removes a user; tasks and API keys cascade
	Delete(ctx context.Context, id uint64) error
}

// APIKeyRepository defines the interface for API key data access
type APIKeyRepository interface {
	// Create stores a new key record
	Create(ctx context.Context, key *models.APIKey) error

	// ListByUser returns every key of a user, revoked ones included
	ListByUser(ctx context.Context, userID uint64) ([]models.APIKey, error)

	// ListActiveByUser returns the user's non-revoked keys
	ListActiveByUser(ctx context.Context, userID uint64) ([]models.APIKey, error)

	// Revoke marks a key owned by userID as revoked. It reports false when no
	// such key exists for that user.
	Revoke(ctx context.Context, userID, keyID uint64) (bool, error)

	// TouchLastUsed records a successful verification
	TouchLastUsed(ctx context.Context, keyID uint64, at time.Time) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByIDForUser finds a task owned by userID
	FindByIDForUser(ctx context.Context, id, userID uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// ApplyBulk creates tasks and changes statuses of the user's existing
	// tasks in one transaction. Created tasks get their IDs in place; the
	// updated tasks are returned.
	ApplyBulk(ctx context.Context, userID uint64, creates []models.Task, updates []StatusUpdate) ([]models.Task, error)

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID    uint64
	Status    *models.TaskStatus
	Query     string
	Ascending bool
	Page      int
	PageSize  int
}

// StatusUpdate is one entry of a bulk status change
type StatusUpdate struct {
	TaskID uint64
	Status models.TaskStatus
}
