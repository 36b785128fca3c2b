package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskaza-api/internal/models"
	"gorm.io/gorm"
)

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTask inserts a task owned by userID.
func CreateTask(t *testing.T, db *gorm.DB, userID uint64, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		Status:      models.TaskStatusTodo,
		UserID:      userID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
