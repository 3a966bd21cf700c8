package repository

import (
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/database"
	"github.com/taskhive/taskhive/internal/models"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create persists a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project owned by the given user
func (r *GormProjectRepository) FindByID(id, userID uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.Scopes(database.OwnedBy(userID)).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns a user's projects, optionally only active ones
func (r *GormProjectRepository) List(userID uint64, activeOnly bool) ([]models.Project, error) {
	var projects []models.Project
	query := r.db.Scopes(database.OwnedBy(userID))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// Save persists changes to an existing project
func (r *GormProjectRepository) Save(project *models.Project) error {
	return r.db.Save(project).Error
}

// DeleteDetachingTasks removes a project and clears the project reference on
// its tasks in one transaction. Tasks survive project deletion.
func (r *GormProjectRepository) DeleteDetachingTasks(project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("project_id = ?", project.ID).
			Update("project_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, project.ID).Error
	})
}

// Stats computes task counts for a project
func (r *GormProjectRepository) Stats(projectID uint64) (models.ProjectStats, error) {
	var stats models.ProjectStats

	if err := r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&stats.TotalTasks).Error; err != nil {
		return stats, err
	}

	if err := r.db.Model(&models.Task{}).
		Where("project_id = ? AND is_completed = ?", projectID, true).
		Count(&stats.CompletedTasks).Error; err != nil {
		return stats, err
	}

	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	if stats.TotalTasks > 0 {
		rate := float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
		stats.CompletionRate = float64(int(rate*100)) / 100
	}

	return stats, nil
}
