package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusOverdue    TaskStatus = "overdue"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityLow    TaskPriority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return true
	}
	return false
}

const (
	MinProgress = 0
	MaxProgress = 100
)

type Task struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null" json:"status"`
	AssigneeID  *uint64      `json:"assigneeId"`
	Progress    int          `gorm:"not null;default:0" json:"progress"`
	CreatedAt   time.Time    `gorm:"not null" json:"createdAt"`
	DueDate     *time.Time   `json:"dueDate"`
}

// TaskPatch lists the fields of a partial task update. A nil pointer leaves
// the field untouched; the Clear flags reset a nullable field to null.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	Status      *TaskStatus
	AssigneeID  *uint64
	Progress    *int
	DueDate     *time.Time

	ClearDescription bool
	ClearAssignee    bool
	ClearDueDate     bool
}

// IsEmpty reports whether the patch would leave a task unchanged.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.AssigneeID == nil && p.Progress == nil &&
		p.DueDate == nil && !p.ClearDescription && !p.ClearAssignee && !p.ClearDueDate
}

// Apply overwrites the fields of task named by the patch. Pointer values are
// copied so the task never aliases caller memory.
func (p TaskPatch) Apply(task *Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.ClearDescription {
		task.Description = nil
	} else if p.Description != nil {
		v := *p.Description
		task.Description = &v
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.ClearAssignee {
		task.AssigneeID = nil
	} else if p.AssigneeID != nil {
		v := *p.AssigneeID
		task.AssigneeID = &v
	}
	if p.Progress != nil {
		task.Progress = *p.Progress
	}
	if p.ClearDueDate {
		task.DueDate = nil
	} else if p.DueDate != nil {
		v := *p.DueDate
		task.DueDate = &v
	}
}
