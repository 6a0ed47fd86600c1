package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskdesk/internal/dto"
	apierrors "github.com/yukikurage/taskdesk/internal/errors"
	"github.com/yukikurage/taskdesk/internal/middleware"
	"github.com/yukikurage/taskdesk/internal/models"
	"github.com/yukikurage/taskdesk/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
	userService *services.UserService
}

func NewTaskHandler(taskService *services.TaskService, userService *services.UserService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		userService: userService,
	}
}

// ListTasks returns all tasks with their assignees.
// Supports status, priority, assigneeId and q filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var input services.ListTasksInput

	if status := c.Query("status"); status != "" && status != "all" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" && priority != "all" {
		p := models.TaskPriority(priority)
		input.Priority = &p
	}
	if assignee := c.Query("assigneeId"); assignee != "" && assignee != "all" {
		id, err := strconv.ParseUint(assignee, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigneeId")
			return
		}
		input.AssigneeID = &id
	}
	input.Query = c.Query("q")

	tasks, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	directory, err := h.userService.UserDirectory()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks, directory))
}

// GetTask returns a specific task by ID
// Task is already loaded by the LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	h.respondTask(c, task)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description *string             `json:"description"`
		Priority    models.TaskPriority `json:"priority" binding:"required"`
		Status      models.TaskStatus   `json:"status" binding:"required"`
		AssigneeID  *uint64             `json:"assigneeId"`
		Progress    *int                `json:"progress"`
		DueDate     *string             `json:"dueDate"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid task data")
		return
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := parseDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "Invalid dueDate")
			return
		}
		dueDate = &parsed
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		Progress:    req.Progress,
		DueDate:     dueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.respondTask(c, *task)
}

// UpdateTask applies a partial update to an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := middleware.ParseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]json.RawMessage
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid task data")
		return
	}

	patch, err := decodeTaskPatch(rawReq)
	if err != nil {
		var fieldErr *fieldError
		if errors.As(err, &fieldErr) {
			apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": fieldErr.Field})
			return
		}
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(taskID, patch)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.respondTask(c, *task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := middleware.ParseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AdjustProgress moves a task's progress by a delta, clamped to 0..100
func (h *TaskHandler) AdjustProgress(c *gin.Context) {
	type AdjustProgressRequest struct {
		Delta *int `json:"delta" binding:"required"`
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req AdjustProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.AdjustProgress(task.ID, *req.Delta)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.respondTask(c, *updated)
}

// GenerateTasks drafts tasks from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

// respondTask writes a task with its assignee resolved
func (h *TaskHandler) respondTask(c *gin.Context, task models.Task) {
	directory := map[uint64]models.User{}
	if task.AssigneeID != nil {
		user, err := h.userService.GetUser(*task.AssigneeID)
		switch {
		case err == nil:
			directory[user.ID] = *user
		case !errors.Is(err, services.ErrUserNotFound):
			apierrors.InternalError(c, "Failed to resolve assignee")
			return
		}
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, directory))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": "title"})
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": "priority"})
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": "status"})
	case errors.Is(err, services.ErrInvalidProgress):
		apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": "progress"})
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

// decodeTaskPatch maps a raw JSON object onto a TaskPatch. A JSON null
// clears nullable fields and is rejected for the others.
func decodeTaskPatch(raw map[string]json.RawMessage) (models.TaskPatch, error) {
	var patch models.TaskPatch

	for key, value := range raw {
		isNull := string(value) == "null"
		var err error

		switch key {
		case "title":
			err = decodeRequired(value, isNull, &patch.Title)
		case "priority":
			err = decodeRequired(value, isNull, &patch.Priority)
		case "status":
			err = decodeRequired(value, isNull, &patch.Status)
		case "progress":
			err = decodeRequired(value, isNull, &patch.Progress)
		case "description":
			if isNull {
				patch.ClearDescription = true
			} else {
				err = json.Unmarshal(value, &patch.Description)
			}
		case "assigneeId":
			if isNull {
				patch.ClearAssignee = true
			} else {
				err = json.Unmarshal(value, &patch.AssigneeID)
			}
		case "dueDate":
			if isNull {
				patch.ClearDueDate = true
				continue
			}
			var s string
			if err = json.Unmarshal(value, &s); err == nil {
				var parsed time.Time
				if parsed, err = parseDate(s); err == nil {
					patch.DueDate = &parsed
				}
			}
		}

		if err != nil {
			return models.TaskPatch{}, &fieldError{Field: key}
		}
	}

	return patch, nil
}

// fieldError names the request field that failed to decode.
type fieldError struct {
	Field string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("invalid %s", e.Field)
}

func decodeRequired[T any](value json.RawMessage, isNull bool, dst **T) error {
	if isNull {
		return errors.New("null not allowed")
	}
	return json.Unmarshal(value, dst)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
