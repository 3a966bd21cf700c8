package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/storage"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrParentTaskNotFound = errors.New("parent task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNegativeHours      = errors.New("hours cannot be negative")
	ErrParentCycle        = errors.New("a task cannot be its own ancestor")
)

// TaskService implements the task hierarchy rules: parent validation,
// completion propagation, and the delete cascade.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	files       storage.FileStorage
	logger      *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, files storage.FileStorage, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		files:       files,
		logger:      logger,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title          string
	Description    string
	Priority       string
	Status         string
	DueDate        *time.Time
	EstimatedHours float64
	Tags           []string
	Category       string
	ProjectID      *uint64
	ParentTaskID   *uint64
	UserID         uint64
}

// UpdateTaskInput represents a partial update. Nil fields are untouched.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Priority       *string
	Status         *string
	IsCompleted    *bool
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
	TagsSet        bool
	Category       *string
	ProjectID      *uint64
	ClearProject   bool
	ParentTaskID   *uint64
	ClearParent    bool
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       uint64
	Status       string // enum value, or "completed"/"pending"
	Priority     string
	ProjectID    *uint64
	TopLevelOnly bool
	Search       string
	Page         int
	PageSize     int
}

// TaskDetail bundles a task with its derived read-side numbers.
type TaskDetail struct {
	Task               *models.Task
	SubtaskCount       int64
	CompletedSubtasks  int64
	CommentCount       int64
	ProgressPercentage int
	Subtasks           []models.Task
}

// CreateTask creates a new task after validating the title, enums, hours,
// and the optional project and parent references.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	priority := models.TaskPriorityMedium
	if input.Priority != "" {
		p, err := models.ParseTaskPriority(input.Priority)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, input.Priority)
		}
		priority = p
	}

	status := models.TaskStatusTodo
	if input.Status != "" {
		st, err := models.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
		}
		status = st
	}

	if input.EstimatedHours < 0 {
		return nil, fmt.Errorf("%w: estimated_hours", ErrNegativeHours)
	}

	if input.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(*input.ProjectID, input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to verify project: %w", err)
		}
	}

	// A parent must exist and belong to the same user. Accepting an
	// arbitrary id here would leave a dangling reference.
	if input.ParentTaskID != nil {
		if _, err := s.taskRepo.FindByID(*input.ParentTaskID, input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentTaskNotFound
			}
			return nil, fmt.Errorf("failed to verify parent task: %w", err)
		}
	}

	task := &models.Task{
		Title:          title,
		Description:    input.Description,
		Priority:       priority,
		Status:         status,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		Category:       input.Category,
		ProjectID:      input.ProjectID,
		ParentTaskID:   input.ParentTaskID,
		UserID:         input.UserID,
	}
	task.SetTags(input.Tags)
	// The flag follows the requested status, so a "done" create lands
	// complete with a timestamp instead of being reset to todo.
	task.IsCompleted = status == models.TaskStatusDone
	task.SyncCompletion(time.Now())

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task with its derived counts and direct subtasks.
func (s *TaskService) GetTask(taskID, userID uint64) (*TaskDetail, error) {
	task, err := s.taskRepo.FindByID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return s.buildDetail(task)
}

// ListTasks returns a user's tasks matching the filters.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		UserID:       input.UserID,
		ProjectID:    input.ProjectID,
		TopLevelOnly: input.TopLevelOnly,
		Search:       input.Search,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}

	switch input.Status {
	case "":
	case "completed":
		completed := true
		filter.Completed = &completed
	case "pending":
		completed := false
		filter.Completed = &completed
	default:
		st, err := models.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
		}
		filter.Status = &st
	}

	if input.Priority != "" {
		p, err := models.ParseTaskPriority(input.Priority)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidPriority, input.Priority)
		}
		filter.Priority = &p
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTask applies a partial update. This is the single entry point every
// mutation path funnels through, so the completion invariant cannot be
// bypassed: toggling is_completed here has the same effects as the dedicated
// complete/incomplete operations, including the downward cascade.
func (s *TaskService) UpdateTask(taskID, userID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	wasCompleted := task.IsCompleted

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
	if input.Priority != nil {
		p, err := models.ParseTaskPriority(*input.Priority)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, *input.Priority)
		}
		task.Priority = p
	}
	if input.Status != nil {
		st, err := models.ParseTaskStatus(*input.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *input.Status)
		}
		task.Status = st
		// Status and flag stay in lockstep even when only one is sent.
		task.IsCompleted = st == models.TaskStatusDone
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		if *input.EstimatedHours < 0 {
			return nil, fmt.Errorf("%w: estimated_hours", ErrNegativeHours)
		}
		task.EstimatedHours = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		if *input.ActualHours < 0 {
			return nil, fmt.Errorf("%w: actual_hours", ErrNegativeHours)
		}
		task.ActualHours = *input.ActualHours
	}
	if input.TagsSet {
		task.SetTags(input.Tags)
	}
	if input.Category != nil {
		task.Category = *input.Category
	}

	if input.ClearProject {
		task.ProjectID = nil
	} else if input.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(*input.ProjectID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to verify project: %w", err)
		}
		task.ProjectID = input.ProjectID
	}

	if input.ClearParent {
		task.ParentTaskID = nil
	} else if input.ParentTaskID != nil {
		if err := s.validateParent(task, *input.ParentTaskID, userID); err != nil {
			return nil, err
		}
		task.ParentTaskID = input.ParentTaskID
	}

	if input.IsCompleted != nil {
		task.IsCompleted = *input.IsCompleted
	}
	task.SyncCompletion(time.Now())

	// Completing through the generic update cascades exactly like the
	// dedicated operation would. The field update and the subtree cascade
	// share one transaction, so a failed cascade rolls the root back too.
	if task.IsCompleted && !wasCompleted {
		if err := s.taskRepo.SaveAndCompleteSubtree(task); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		return task, nil
	}

	if err := s.taskRepo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// MarkComplete marks a task and all its direct and indirect subtasks
// complete, transactionally. Calling it on a complete task only re-touches
// the update timestamp.
func (s *TaskService) MarkComplete(taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.CompleteSubtree(task); err != nil {
		return nil, fmt.Errorf("failed to mark complete: %w", err)
	}

	return task, nil
}

// MarkIncomplete reopens a task. Subtask completion states are deliberately
// left as they are; the cascade only runs downward on completion.
func (s *TaskService) MarkIncomplete(taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.IsCompleted = false
	task.SyncCompletion(time.Now())

	if err := s.taskRepo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to mark incomplete: %w", err)
	}

	return task, nil
}

// DeleteTask runs the delete cascade: direct subtasks are promoted to top
// level, comments and attachment rows are removed with the task in one
// transaction, and only after commit are the attachment bytes released
// best-effort.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID uint64) error {
	task, err := s.taskRepo.FindByID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	storagePaths, err := s.taskRepo.DeleteCascade(task)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	for _, path := range storagePaths {
		if err := s.files.Delete(ctx, path); err != nil {
			s.logger.Warn("failed to remove attachment bytes",
				zap.String("storage_path", path),
				zap.Uint64("task_id", taskID),
				zap.Error(err))
		}
	}

	return nil
}

// validateParent checks that the candidate parent exists, belongs to the
// same user, and is not the task itself or one of its descendants.
func (s *TaskService) validateParent(task *models.Task, parentID, userID uint64) error {
	if parentID == task.ID {
		return ErrParentCycle
	}

	parent, err := s.taskRepo.FindByID(parentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParentTaskNotFound
		}
		return fmt.Errorf("failed to verify parent task: %w", err)
	}

	// Walk up from the candidate; hitting this task means the candidate
	// is a descendant.
	for parent.ParentTaskID != nil {
		ancestorID := *parent.ParentTaskID
		if ancestorID == task.ID {
			return ErrParentCycle
		}
		parent, err = s.taskRepo.FindByID(ancestorID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParentTaskNotFound
			}
			return fmt.Errorf("failed to walk parent chain: %w", err)
		}
	}

	return nil
}

func (s *TaskService) buildDetail(task *models.Task) (*TaskDetail, error) {
	total, completed, err := s.taskRepo.CountSubtasks(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count subtasks: %w", err)
	}

	comments, err := s.taskRepo.CountComments(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	subtasks, err := s.taskRepo.ListSubtasks(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}

	return &TaskDetail{
		Task:               task,
		SubtaskCount:       total,
		CompletedSubtasks:  completed,
		CommentCount:       comments,
		ProgressPercentage: progressPercentage(total, completed, task.IsCompleted),
		Subtasks:           subtasks,
	}, nil
}

// progressPercentage derives progress from direct-subtask counts. A leaf
// task is all-or-nothing. Integer truncation is intentional.
func progressPercentage(total, completed int64, isCompleted bool) int {
	if total == 0 {
		if isCompleted {
			return 100
		}
		return 0
	}
	return int(completed * 100 / total)
}
