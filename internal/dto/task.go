package dto

import (
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Priority       models.TaskPriority `json:"priority"`
	PriorityLabel  string              `json:"priority_label"`
	Status         models.TaskStatus   `json:"status"`
	StatusLabel    string              `json:"status_label"`
	IsCompleted    bool                `json:"is_completed"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DueDate        *time.Time          `json:"due_date"`
	CompletedAt    *time.Time          `json:"completed_at"`
	EstimatedHours float64             `json:"estimated_hours"`
	ActualHours    float64             `json:"actual_hours"`
	Tags           []string            `json:"tags"`
	Category       string              `json:"category"`
	UserID         uint64              `json:"user_id"`
	ProjectID      *uint64             `json:"project_id"`
	ParentTaskID   *uint64             `json:"parent_task_id"`
	IsOverdue      bool                `json:"is_overdue"`
	DaysUntilDue   *int                `json:"days_until_due"`
}

// TaskDetailDTO adds the derived hierarchy numbers to a task
type TaskDetailDTO struct {
	TaskDTO
	ProgressPercentage int       `json:"progress_percentage"`
	SubtasksCount      int64     `json:"subtasks_count"`
	CommentsCount      int64     `json:"comments_count"`
	Subtasks           []TaskDTO `json:"subtasks"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Priority:       task.Priority,
		PriorityLabel:  task.PriorityLabel(),
		Status:         task.Status,
		StatusLabel:    task.StatusLabel(),
		IsCompleted:    task.IsCompleted,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		DueDate:        task.DueDate,
		CompletedAt:    task.CompletedAt,
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		Tags:           task.TagList(),
		Category:       task.Category,
		UserID:         task.UserID,
		ProjectID:      task.ProjectID,
		ParentTaskID:   task.ParentTaskID,
		IsOverdue:      task.IsOverdue(),
		DaysUntilDue:   task.DaysUntilDue(),
	}
}

// ToTaskDetailDTO converts a service TaskDetail to its response shape
func ToTaskDetailDTO(detail *services.TaskDetail) TaskDetailDTO {
	subtasks := make([]TaskDTO, len(detail.Subtasks))
	for i, st := range detail.Subtasks {
		subtasks[i] = ToTaskDTO(st)
	}

	return TaskDetailDTO{
		TaskDTO:            ToTaskDTO(*detail.Task),
		ProgressPercentage: detail.ProgressPercentage,
		SubtasksCount:      detail.SubtaskCount,
		CommentsCount:      detail.CommentCount,
		Subtasks:           subtasks,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
