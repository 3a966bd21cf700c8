package dto

import (
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Color       string               `json:"color"`
	IsActive    bool                 `json:"is_active"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	UserID      uint64               `json:"user_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	IsCompleted bool                 `json:"is_completed"`
	IsOverdue   bool                 `json:"is_overdue"`
	TaskStats   models.ProjectStats  `json:"task_stats"`
}

// ToProjectDTO converts a service ProjectDetail to its response shape
func ToProjectDTO(detail services.ProjectDetail) ProjectDTO {
	p := detail.Project
	return ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		IsActive:    p.IsActive,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		IsCompleted: detail.IsCompleted,
		IsOverdue:   detail.IsOverdue,
		TaskStats:   detail.Stats,
	}
}
