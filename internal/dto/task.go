package dto

import (
	"time"

	"github.com/yukikurage/taskdesk/internal/models"
)

// TaskDTO represents a task in API responses with its resolved assignee
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	AssigneeID  *uint64             `json:"assigneeId"`
	Progress    int                 `json:"progress"`
	CreatedAt   time.Time           `json:"createdAt"`
	DueDate     *time.Time          `json:"dueDate"`
	Assignee    *UserDTO            `json:"assignee"`
}

// ToTaskDTO converts a Task model to TaskDTO. Assignee is nil when the task
// has no assignee or the id does not resolve in users.
func ToTaskDTO(task models.Task, users map[uint64]models.User) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		AssigneeID:  task.AssigneeID,
		Progress:    task.Progress,
		CreatedAt:   task.CreatedAt,
		DueDate:     task.DueDate,
	}

	if task.AssigneeID != nil {
		if user, ok := users[*task.AssigneeID]; ok {
			assignee := ToUserDTO(user)
			dto.Assignee = &assignee
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task, users map[uint64]models.User) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, users)
	}
	return items
}
