package services

import (
	"fmt"

	"github.com/taskhive/taskhive/internal/repository"
)

// UserStats is the per-user aggregate behind the stats endpoint.
type UserStats struct {
	TotalTasks     int64   `json:"total_tasks"`
	CompletedTasks int64   `json:"completed_tasks"`
	PendingTasks   int64   `json:"pending_tasks"`
	OverdueTasks   int64   `json:"overdue_tasks"`
	DueThisWeek    int64   `json:"due_this_week"`
	CompletionRate float64 `json:"completion_rate"`
}

// StatsService computes read-only aggregates for dashboards.
type StatsService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *StatsService {
	return &StatsService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// UserStats returns task aggregates for a user
func (s *StatsService) UserStats(userID uint64) (*UserStats, error) {
	counts, err := s.taskRepo.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	stats := &UserStats{
		TotalTasks:     counts.Total,
		CompletedTasks: counts.Completed,
		PendingTasks:   counts.Total - counts.Completed,
		OverdueTasks:   counts.Overdue,
		DueThisWeek:    counts.DueThisWeek,
	}
	if counts.Total > 0 {
		rate := float64(counts.Completed) / float64(counts.Total) * 100
		stats.CompletionRate = float64(int(rate*100)) / 100
	}

	return stats, nil
}
