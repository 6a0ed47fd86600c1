package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/taskdesk/internal/constants"
	"github.com/yukikurage/taskdesk/internal/models"
	"github.com/yukikurage/taskdesk/internal/repository"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidPriority        = errors.New("priority must be one of high, medium, low")
	ErrInvalidStatus          = errors.New("status must be one of pending, in_progress, completed, overdue")
	ErrInvalidProgress        = errors.New("progress must be between 0 and 100")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	aiService *AIService

	// serializes read-modify-write progress adjustments
	progressMu sync.Mutex
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		aiService: aiService,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *uint64
	Query      string
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    models.TaskPriority
	Status      models.TaskStatus
	AssigneeID  *uint64
	Progress    *int
	DueDate     *time.Time
}

// ListTasks returns tasks matching the filters in creation order
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	var (
		tasks []models.Task
		err   error
	)
	if input.AssigneeID != nil {
		tasks, err = s.taskRepo.ListByAssignee(*input.AssigneeID)
	} else {
		tasks, err = s.taskRepo.List()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	filtered := tasks[:0]
	for _, task := range tasks {
		if input.Status != nil && task.Status != *input.Status {
			continue
		}
		if input.Priority != nil && task.Priority != *input.Priority {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(task.Title), query) {
			continue
		}
		filtered = append(filtered, task)
	}

	return filtered, nil
}

// GetTask returns a task by ID
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates and stores a new task. Progress defaults to 0; the
// assignee is recorded without checking that the user exists.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	progress := 0
	if input.Progress != nil {
		progress = *input.Progress
	}
	if progress < models.MinProgress || progress > models.MaxProgress {
		return nil, ErrInvalidProgress
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		AssigneeID:  input.AssigneeID,
		Progress:    progress,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ValidatePatch checks a patch against the same constraints used at creation.
func ValidatePatch(patch models.TaskPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return ErrTitleEmpty
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return ErrInvalidPriority
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return ErrInvalidStatus
	}
	if patch.Progress != nil && (*patch.Progress < models.MinProgress || *patch.Progress > models.MaxProgress) {
		return ErrInvalidProgress
	}
	return nil
}

// UpdateTask validates and applies a partial update. Fields absent from the
// patch are left untouched; an empty patch returns the task unchanged.
func (s *TaskService) UpdateTask(taskID uint64, patch models.TaskPatch) (*models.Task, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.Update(taskID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(taskID uint64) error {
	deleted, err := s.taskRepo.Delete(taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

// AdjustProgress moves a task's progress by delta, clamped to [0, 100]
func (s *TaskService) AdjustProgress(taskID uint64, delta int) (*models.Task, error) {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()

	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	progress := ClampProgress(task.Progress + delta)
	return s.UpdateTask(taskID, models.TaskPatch{Progress: &progress})
}

// ClampProgress limits p to the valid progress range.
func ClampProgress(p int) int {
	return max(models.MinProgress, min(models.MaxProgress, p))
}

// GenerateTasks uses AI to draft tasks from free text. Drafts are not stored.
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text)
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
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.TaskPriorityMedium
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
