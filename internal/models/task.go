package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

// ParseTaskPriority validates a priority value from client input.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return TaskPriority(s), nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

// ParseTaskStatus validates a status value from client input.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(200);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	IsCompleted bool         `gorm:"default:false;index" json:"is_completed"`

	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DueDate     *time.Time     `gorm:"index" json:"due_date"`
	CompletedAt *time.Time     `json:"completed_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	EstimatedHours float64 `gorm:"default:0" json:"estimated_hours"`
	ActualHours    float64 `gorm:"default:0" json:"actual_hours"`

	// Tags are stored comma-separated; use TagList/SetTags for the list view.
	Tags     string `gorm:"type:varchar(500)" json:"-"`
	Category string `gorm:"type:varchar(100)" json:"category"`

	UserID       uint64  `gorm:"not null;index" json:"user_id"`
	ProjectID    *uint64 `gorm:"index" json:"project_id"`
	ParentTaskID *uint64 `gorm:"index" json:"parent_task_id"`

	// Relations
	Author      User             `gorm:"foreignKey:UserID" json:"-"`
	Project     *Project         `gorm:"foreignKey:ProjectID" json:"-"`
	ParentTask  *Task            `gorm:"foreignKey:ParentTaskID" json:"-"`
	Subtasks    []Task           `gorm:"foreignKey:ParentTaskID" json:"-"`
	Comments    []TaskComment    `gorm:"foreignKey:TaskID" json:"-"`
	Attachments []TaskAttachment `gorm:"foreignKey:TaskID" json:"-"`
}

var priorityLabels = map[TaskPriority]string{
	TaskPriorityLow:    "Low",
	TaskPriorityMedium: "Medium",
	TaskPriorityHigh:   "High",
	TaskPriorityUrgent: "Urgent",
}

var statusLabels = map[TaskStatus]string{
	TaskStatusTodo:       "To Do",
	TaskStatusInProgress: "In Progress",
	TaskStatusReview:     "Review",
	TaskStatusDone:       "Done",
}

// PriorityLabel returns the human-readable priority.
func (t *Task) PriorityLabel() string {
	if label, ok := priorityLabels[t.Priority]; ok {
		return label
	}
	return priorityLabels[TaskPriorityMedium]
}

// StatusLabel returns the human-readable status.
func (t *Task) StatusLabel() string {
	if label, ok := statusLabels[t.Status]; ok {
		return label
	}
	return statusLabels[TaskStatusTodo]
}

// IsOverdue reports whether the task is past its due date and not completed.
func (t *Task) IsOverdue() bool {
	return t.DueDate != nil && t.DueDate.Before(time.Now()) && !t.IsCompleted
}

// DaysUntilDue returns whole days until the due date, nil without one.
func (t *Task) DaysUntilDue() *int {
	if t.DueDate == nil {
		return nil
	}
	days := int(time.Until(*t.DueDate).Hours() / 24)
	return &days
}

// TagList splits the stored tags into a list, trimming whitespace and
// dropping empty entries.
func (t *Task) TagList() []string {
	if t.Tags == "" {
		return []string{}
	}
	parts := strings.Split(t.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// SetTags stores a list of tags; nil or empty clears the field. The stored
// form round-trips through TagList.
func (t *Task) SetTags(tags []string) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	t.Tags = strings.Join(cleaned, ",")
}

// SyncCompletion enforces the completion invariant: the flag, status, and
// completion timestamp always agree. Every write path funnels through this
// before persisting.
func (t *Task) SyncCompletion(now time.Time) {
	if t.IsCompleted {
		t.Status = TaskStatusDone
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
		if t.Status == TaskStatusDone {
			t.Status = TaskStatusTodo
		}
	}
}
