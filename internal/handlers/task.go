package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/internal/dto"
	apierrors "github.com/taskhive/taskhive/internal/errors"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns the current user's tasks with optional filters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		UserID:       userID,
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		Search:       c.Query("search"),
		TopLevelOnly: c.Query("top_level") == "true",
		Page:         params.Page,
		PageSize:     params.Limit,
	}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title          string     `json:"title" binding:"required"`
		Description    string     `json:"description"`
		Priority       string     `json:"priority"`
		Status         string     `json:"status"`
		DueDate        *time.Time `json:"due_date"`
		EstimatedHours float64    `json:"estimated_hours"`
		Tags           []string   `json:"tags"`
		Category       string     `json:"category"`
		ProjectID      *uint64    `json:"project_id"`
		ParentTaskID   *uint64    `json:"parent_task_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		Status:         req.Status,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
		Category:       req.Category,
		ProjectID:      req.ProjectID,
		ParentTaskID:   req.ParentTaskID,
		UserID:         userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task with its subtasks and derived counts
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDetailDTO(detail))
}

// UpdateTask applies a partial update to a task. The raw body is inspected
// so that explicit nulls (clear due date, detach project or parent) can be
// told apart from omitted fields.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := buildUpdateInput(rawReq)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CompleteTask marks a task and all its subtasks complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.MarkComplete(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ReopenTask marks a task incomplete; subtasks are untouched
func (h *TaskHandler) ReopenTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.MarkIncomplete(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task with its comments and attachments; direct
// subtasks become top-level tasks
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// buildUpdateInput maps the raw JSON body onto an UpdateTaskInput,
// distinguishing omitted fields from explicit nulls.
func buildUpdateInput(raw map[string]any) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	if v, ok := raw["title"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, errors.New("title must be a string")
		}
		input.Title = &s
	}
	if v, ok := raw["description"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, errors.New("description must be a string")
		}
		input.Description = &s
	}
	if v, ok := raw["priority"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, errors.New("priority must be a string")
		}
		input.Priority = &s
	}
	if v, ok := raw["status"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, errors.New("status must be a string")
		}
		input.Status = &s
	}
	if v, ok := raw["is_completed"]; ok {
		b, ok := v.(bool)
		if !ok {
			return input, errors.New("is_completed must be a boolean")
		}
		input.IsCompleted = &b
	}
	if v, ok := raw["due_date"]; ok {
		if v == nil {
			input.ClearDueDate = true
		} else {
			s, ok := v.(string)
			if !ok {
				return input, errors.New("due_date must be an RFC 3339 string or null")
			}
			parsed, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return input, errors.New("due_date must be an RFC 3339 string or null")
			}
			input.DueDate = &parsed
		}
	}
	if v, ok := raw["estimated_hours"]; ok {
		f, ok := v.(float64)
		if !ok {
			return input, errors.New("estimated_hours must be a number")
		}
		input.EstimatedHours = &f
	}
	if v, ok := raw["actual_hours"]; ok {
		f, ok := v.(float64)
		if !ok {
			return input, errors.New("actual_hours must be a number")
		}
		input.ActualHours = &f
	}
	if v, ok := raw["tags"]; ok {
		input.TagsSet = true
		if v != nil {
			list, ok := v.([]any)
			if !ok {
				return input, errors.New("tags must be a list of strings or null")
			}
			tags := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return input, errors.New("tags must be a list of strings or null")
				}
				tags = append(tags, s)
			}
			input.Tags = tags
		}
	}
	if v, ok := raw["category"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, errors.New("category must be a string")
		}
		input.Category = &s
	}
	if v, ok := raw["project_id"]; ok {
		if v == nil {
			input.ClearProject = true
		} else {
			id, err := toUint64(v)
			if err != nil {
				return input, errors.New("project_id must be a positive integer or null")
			}
			input.ProjectID = &id
		}
	}
	if v, ok := raw["parent_task_id"]; ok {
		if v == nil {
			input.ClearParent = true
		} else {
			id, err := toUint64(v)
			if err != nil {
				return input, errors.New("parent_task_id must be a positive integer or null")
			}
			input.ParentTaskID = &id
		}
	}

	return input, nil
}

func toUint64(v any) (uint64, error) {
	f, ok := v.(float64)
	if !ok || f < 1 || f != float64(uint64(f)) {
		return 0, errors.New("not a positive integer")
	}
	return uint64(f), nil
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNegativeHours),
		errors.Is(err, services.ErrParentCycle),
		errors.Is(err, services.ErrParentTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
