package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/database"
	"github.com/taskhive/taskhive/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create persists a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task owned by the given user, with optional preloading
func (r *GormTaskRepository) FindByID(id, userID uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Scopes(database.OwnedBy(userID))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.user_id = ?", filter.UserID)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Completed != nil {
		query = query.Where("tasks.is_completed = ?", *filter.Completed)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.TopLevelOnly {
		query = query.Where("tasks.parent_task_id IS NULL")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("tasks.title LIKE ? OR tasks.description LIKE ? OR tasks.tags LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Pending before completed, urgent first, nearest due date, newest.
	listQuery := query.Order(
		"tasks.is_completed ASC, " +
			"CASE tasks.priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, " +
			"CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC, " +
			"tasks.created_at DESC")

	if err := listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize)).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Save persists changes to an existing task
func (r *GormTaskRepository) Save(task *models.Task) error {
	return r.db.Save(task).Error
}

// ListSubtasks returns the direct children of a task
func (r *GormTaskRepository) ListSubtasks(taskID uint64) ([]models.Task, error) {
	var subtasks []models.Task
	err := r.db.Where("parent_task_id = ?", taskID).
		Order("created_at ASC").
		Find(&subtasks).Error
	return subtasks, err
}

// CountSubtasks returns total and completed direct-subtask counts
func (r *GormTaskRepository) CountSubtasks(taskID uint64) (int64, int64, error) {
	var total, completed int64

	if err := r.db.Model(&models.Task{}).
		Where("parent_task_id = ?", taskID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	if err := r.db.Model(&models.Task{}).
		Where("parent_task_id = ? AND is_completed = ?", taskID, true).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}

// CountComments returns the number of comments on a task
func (r *GormTaskRepository) CountComments(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskComment{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

// CompleteSubtree marks a task and every direct and indirect subtask complete
// in one transaction. Already-complete subtasks keep their original
// completion timestamp.
func (r *GormTaskRepository) CompleteSubtree(task *models.Task) error {
	now := time.Now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return completeSubtree(tx, task.ID, now)
	})
	if err != nil {
		return err
	}

	task.IsCompleted = true
	task.Status = models.TaskStatusDone
	if task.CompletedAt == nil {
		task.CompletedAt = &now
	}
	task.UpdatedAt = now
	return nil
}

// SaveAndCompleteSubtree persists the task's fields and completes every
// direct and indirect subtask in one transaction, so a failed cascade never
// leaves a committed complete parent over incomplete children.
func (r *GormTaskRepository) SaveAndCompleteSubtree(task *models.Task) error {
	now := time.Now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		return completeSubtree(tx, task.ID, now)
	})
	if err != nil {
		return err
	}

	task.UpdatedAt = now
	return nil
}

func completeSubtree(tx *gorm.DB, rootID uint64, now time.Time) error {
	ids, err := subtreeIDs(tx, rootID)
	if err != nil {
		return err
	}

	if err := tx.Model(&models.Task{}).
		Where("id IN ? AND is_completed = ?", ids, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"status":       models.TaskStatusDone,
			"completed_at": now,
			"updated_at":   now,
		}).Error; err != nil {
		return err
	}

	// Re-touch the root even when it was already complete.
	return tx.Model(&models.Task{}).
		Where("id = ?", rootID).
		Update("updated_at", now).Error
}

// DeleteCascade removes a task, its comments, and its attachment rows, and
// reparents direct children to top level. All steps run in one transaction:
// a failure at any point leaves every row untouched. The returned storage
// paths let the caller release the attachment bytes after commit.
func (r *GormTaskRepository) DeleteCascade(task *models.Task) ([]string, error) {
	var storagePaths []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TaskAttachment{}).
			Where("task_id = ?", task.ID).
			Pluck("storage_path", &storagePaths).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("parent_task_id = ?", task.ID).
			Update("parent_task_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", task.ID).
			Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", task.ID).
			Delete(&models.TaskAttachment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, task.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return storagePaths, nil
}

// CountByUser returns aggregate task counts for a user
func (r *GormTaskRepository) CountByUser(userID uint64) (UserTaskCounts, error) {
	var counts UserTaskCounts
	now := time.Now()
	weekEnd := now.Add(7 * 24 * time.Hour)

	base := func() *gorm.DB {
		return r.db.Model(&models.Task{}).Where("user_id = ?", userID)
	}

	if err := base().Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := base().Where("is_completed = ?", true).Count(&counts.Completed).Error; err != nil {
		return counts, err
	}
	if err := base().Where("due_date < ? AND is_completed = ?", now, false).
		Count(&counts.Overdue).Error; err != nil {
		return counts, err
	}
	if err := base().Where("due_date BETWEEN ? AND ? AND is_completed = ?", now, weekEnd, false).
		Count(&counts.DueThisWeek).Error; err != nil {
		return counts, err
	}

	return counts, nil
}

// subtreeIDs collects a task's id together with every descendant id.
// Parent edges are checked for cycles at assignment time, so the walk
// terminates.
func subtreeIDs(tx *gorm.DB, rootID uint64) ([]uint64, error) {
	ids := []uint64{rootID}
	frontier := []uint64{rootID}

	for len(frontier) > 0 {
		var children []uint64
		if err := tx.Model(&models.Task{}).
			Where("parent_task_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}

	return ids, nil
}
