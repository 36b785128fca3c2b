package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/constants"
	apierrors "github.com/yukikurage/taskaza-api/internal/errors"
	"github.com/yukikurage/taskaza-api/internal/logger"
	"github.com/yukikurage/taskaza-api/internal/models"
	"github.com/yukikurage/taskaza-api/internal/services"
)

// TaskLoader loads a task owned by a user.
type TaskLoader interface {
	GetTask(ctx context.Context, userID, taskID uint64) (*models.Task, error)
}

// RequireTaskAccess loads the task named by the :id parameter.
// Tasks of other users are reported as not found.
func RequireTaskAccess(tasks TaskLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), user.ID, taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				log := logger.FromContext(c)
				log.Error().Err(err).Uint64("task_id", taskID).Msg("failed to load task")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetCurrentTask retrieves the task loaded by RequireTaskAccess
func GetCurrentTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}

	task, ok := value.(*models.Task)
	return task, ok && task != nil
}
