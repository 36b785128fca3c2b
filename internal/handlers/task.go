package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/dto"
	apierrors "github.com/yukikurage/taskaza-api/internal/errors"
	"github.com/yukikurage/taskaza-api/internal/middleware"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/repository"
	"github.com/yukikurage/taskaza-api/internal/services"
	"github.com/yukikurage/taskaza-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

type taskRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
}

// ListTasks returns the current user's tasks
// Supports status, q, page, limit and sort query parameters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var status *models.TaskStatus
	if s := c.Query("status"); s != "" {
		taskStatus := models.TaskStatus(s)
		status = &taskStatus
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		UserID:    user.ID,
		Status:    status,
		Query:     c.Query("q"),
		Ascending: utils.SortAscending(c),
		Page:      params.Page,
		PageSize:  params.Limit,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := contextTask(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		UserID:      user.ID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ReplaceTask overwrites every field of a task
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	task, ok := contextTask(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task, services.UpdateTaskInput{
		Title:        &req.Title,
		Description:  &req.Description,
		Status:       &status,
		DueDate:      req.DueDate,
		ClearDueDate: req.DueDate == nil,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// UpdateTask updates only the fields present in the request
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := contextTask(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		invalidBody(c, err)
		return
	}

	var input services.UpdateTaskInput
	if title, ok := rawReq["title"]; ok {
		titleStr, ok := title.(string)
		if !ok {
			apierrors.BadRequest(c, "title must be a string")
			return
		}
		input.Title = &titleStr
	}
	if description, ok := rawReq["description"]; ok {
		descStr, ok := description.(string)
		if !ok {
			apierrors.BadRequest(c, "description must be a string")
			return
		}
		input.Description = &descStr
	}
	if status, ok := rawReq["status"]; ok {
		statusStr, ok := status.(string)
		if !ok {
			apierrors.BadRequest(c, "status must be a string")
			return
		}
		taskStatus := models.TaskStatus(statusStr)
		input.Status = &taskStatus
	}
	if dueDate, ok := rawReq["due_date"]; ok {
		// due_date was provided (might be null)
		if dueDate == nil {
			input.ClearDueDate = true
		} else {
			dueDateStr, ok := dueDate.(string)
			if !ok {
				apierrors.BadRequest(c, "due_date must be an RFC3339 timestamp")
				return
			}
			parsedTime, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "due_date must be an RFC3339 timestamp")
				return
			}
			input.DueDate = &parsedTime
		}
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := contextTask(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkTasks creates tasks and changes statuses in one request
func (h *TaskHandler) BulkTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type StatusChange struct {
		ID     uint64            `json:"id" binding:"required"`
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	type BulkRequest struct {
		Create       []taskRequest  `json:"create"`
		UpdateStatus []StatusChange `json:"update_status"`
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	input := services.BulkTasksInput{UserID: user.ID}
	for _, r := range req.Create {
		input.Create = append(input.Create, services.CreateTaskInput{
			Title:       r.Title,
			Description: r.Description,
			Status:      r.Status,
			DueDate:     r.DueDate,
		})
	}
	for _, u := range req.UpdateStatus {
		input.UpdateStatus = append(input.UpdateStatus, repository.StatusUpdate{
			TaskID: u.ID,
			Status: u.Status,
		})
	}

	result, err := h.taskService.BulkTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BulkTasksResponse{
		Created: dto.ToTaskDTOs(result.Created),
		Updated: dto.ToTaskDTOs(result.Updated),
	})
}

// GenerateTasks generates task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	generatedTasks, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text: req.Text,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	log := requestLog(c)
	log.Info().Int("count", len(generatedTasks)).Msg("generated task suggestions")

	c.JSON(http.StatusOK, gin.H{
		"tasks": generatedTasks,
	})
}

func contextTask(c *gin.Context) (*models.Task, bool) {
	task, ok := middleware.GetCurrentTask(c)
	if !ok {
		internalError(c, errors.New("task missing from context"), "Task not found in context")
		return nil, false
	}
	return task, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrBulkEmpty),
		errors.Is(err, services.ErrBulkTooLarge),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	default:
		internalError(c, err, "Failed to process task request")
	}
}
