package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/repository"
)

var (
	ErrProjectNameRequired = errors.New("project name is required")
	ErrInvalidColor        = errors.New("invalid color")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	Color       string
	StartDate   *time.Time
	EndDate     *time.Time
	UserID      uint64
}

// UpdateProjectInput represents a partial project update
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
	IsActive    *bool
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectDetail bundles a project with its derived state.
type ProjectDetail struct {
	Project     *models.Project
	Stats       models.ProjectStats
	IsCompleted bool
	IsOverdue   bool
}

// CreateProject creates a new project
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	color := models.DefaultProjectColor
	if input.Color != "" {
		if !colorPattern.MatchString(input.Color) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColor, input.Color)
		}
		color = input.Color
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Color:       color,
		IsActive:    true,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		UserID:      input.UserID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project with derived stats
func (s *ProjectService) GetProject(projectID, userID uint64) (*ProjectDetail, error) {
	project, err := s.projectRepo.FindByID(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return s.buildDetail(project)
}

// ListProjects returns a user's projects with derived stats
func (s *ProjectService) ListProjects(userID uint64, activeOnly bool) ([]ProjectDetail, error) {
	projects, err := s.projectRepo.List(userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	details := make([]ProjectDetail, 0, len(projects))
	for i := range projects {
		detail, err := s.buildDetail(&projects[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	return details, nil
}

// UpdateProject applies a partial update
func (s *ProjectService) UpdateProject(projectID, userID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Color != nil {
		if !colorPattern.MatchString(*input.Color) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColor, *input.Color)
		}
		project.Color = *input.Color
	}
	if input.IsActive != nil {
		project.IsActive = *input.IsActive
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}

	if err := s.projectRepo.Save(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project. Its tasks are detached, not deleted.
func (s *ProjectService) DeleteProject(projectID, userID uint64) error {
	project, err := s.projectRepo.FindByID(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.DeleteDetachingTasks(project); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

func (s *ProjectService) buildDetail(project *models.Project) (*ProjectDetail, error) {
	stats, err := s.projectRepo.Stats(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute project stats: %w", err)
	}

	// A project with no tasks is not considered complete.
	isCompleted := stats.TotalTasks > 0 && stats.CompletedTasks == stats.TotalTasks
	isOverdue := project.EndDate != nil && project.EndDate.Before(time.Now()) && !isCompleted

	return &ProjectDetail{
		Project:     project,
		Stats:       stats,
		IsCompleted: isCompleted,
		IsOverdue:   isOverdue,
	}, nil
}
