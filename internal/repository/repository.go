package repository

import (
	"errors"

	"github.com/yukikurage/taskdesk/internal/models"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("repository: record not found")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create assigns the next id and persists the user. JoinedAt is stamped
	// with the current time when unset.
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by exact, case-sensitive username match
	FindByUsername(username string) (*models.User, error)

	// List returns all users in insertion order
	List() ([]models.User, error)

	// Count returns the number of stored users
	Count() (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create assigns the next id and persists the task. CreatedAt is stamped
	// with the current time when unset.
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// List returns all tasks in insertion order
	List() ([]models.Task, error)

	// Update merges the patch onto the stored task and returns the result.
	// Fields are not validated here.
	Update(id uint64, patch models.TaskPatch) (*models.Task, error)

	// Delete removes a task and reports whether it existed
	Delete(id uint64) (bool, error)

	// ListByAssignee returns the tasks assigned to the given user
	ListByAssignee(assigneeID uint64) ([]models.Task, error)
}

// Repositories groups the user and task stores of one backend.
type Repositories struct {
	Users UserRepository
	Tasks TaskRepository
}
