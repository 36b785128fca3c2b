package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/yukikurage/taskaza-api/internal/database"
	"github.com/yukikurage/taskaza-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByIDForUser finds a task owned by userID
func (r *GormTaskRepository) FindByIDForUser(ctx context.Context, id, userID uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy(filter.UserID))

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where("LOWER(tasks.title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.Ascending {
		listQuery = listQuery.Order("tasks.created_at ASC").Order("tasks.id ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC").Order("tasks.id DESC")
	}

	if err := listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// ApplyBulk creates tasks and updates statuses in one transaction. Status
// updates for tasks that do not exist or belong to someone else are skipped.
func (r *GormTaskRepository) ApplyBulk(ctx context.Context, userID uint64, creates []models.Task, updates []StatusUpdate) ([]models.Task, error) {
	updated := make([]models.Task, 0, len(updates))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(creates) > 0 {
			if err := tx.Create(&creates).Error; err != nil {
				return err
			}
		}

		for _, u := range updates {
			var task models.Task
			err := tx.Scopes(database.OwnedBy(userID)).First(&task, u.TaskID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			task.Status = u.Status
			if err := tx.Save(&task).Error; err != nil {
				return err
			}
			updated = append(updated, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}
