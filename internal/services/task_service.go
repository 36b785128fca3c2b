package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskaza-api/internal/constants"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/repository"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrInvalidStatus          = errors.New("status must be one of TODO, IN_PROGRESS, DONE")
	ErrBulkEmpty              = errors.New("bulk request contains no operations")
	ErrBulkTooLarge           = errors.New("bulk request contains too many operations")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	generator TaskGenerator
}

// NewTaskService creates a new TaskService. generator may be nil when AI
// generation is not configured.
func NewTaskService(taskRepo repository.TaskRepository, generator TaskGenerator) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		generator: generator,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID    uint64
	Status    *models.TaskStatus
	Query     string
	Ascending bool
	Page      int
	PageSize  int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueDate     *time.Time
	UserID      uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// ListTasks returns the user's tasks matching the provided filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		UserID:    input.UserID,
		Status:    input.Status,
		Query:     input.Query,
		Ascending: input.Ascending,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task owned by userID. Tasks of other users are reported
// as not found.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByIDForUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a new task with validation
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	task, err := buildTask(input)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(ctx context.Context, task *models.Task, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, task *models.Task) error {
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// BulkTasksInput represents a batch of creations and status changes
type BulkTasksInput struct {
	UserID       uint64
	Create       []CreateTaskInput
	UpdateStatus []repository.StatusUpdate
}

// BulkTasksResult holds the tasks touched by a bulk request
type BulkTasksResult struct {
	Created []models.Task
	Updated []models.Task
}

// BulkTasks validates the whole batch up front, then applies it atomically.
func (s *TaskService) BulkTasks(ctx context.Context, input BulkTasksInput) (*BulkTasksResult, error) {
	if len(input.Create) == 0 && len(input.UpdateStatus) == 0 {
		return nil, ErrBulkEmpty
	}
	if len(input.Create) > constants.MaxBulkItems || len(input.UpdateStatus) > constants.MaxBulkItems {
		return nil, ErrBulkTooLarge
	}

	creates := make([]models.Task, 0, len(input.Create))
	for _, c := range input.Create {
		c.UserID = input.UserID
		task, err := buildTask(c)
		if err != nil {
			return nil, err
		}
		creates = append(creates, *task)
	}
	for _, u := range input.UpdateStatus {
		if !u.Status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	updated, err := s.taskRepo.ApplyBulk(ctx, input.UserID, creates, input.UpdateStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to apply bulk request: %w", err)
	}

	return &BulkTasksResult{Created: creates, Updated: updated}, nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text string
}

// GenerateTasks uses AI to suggest tasks from text. Nothing is persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func buildTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	return &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
		UserID:      input.UserID,
	}, nil
}
