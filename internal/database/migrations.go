package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes creates the composite indexes the common list queries rely on.
// AutoMigrate already covers the single-column tags from the models.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"tasks", "idx_tasks_user_completed", "user_id, is_completed"},
		{"tasks", "idx_tasks_user_due_date", "user_id, due_date"},
		{"tasks", "idx_tasks_parent_task_id", "parent_task_id"},
		{"task_comments", "idx_task_comments_task_id", "task_id"},
		{"task_attachments", "idx_task_attachments_task_id", "task_id"},
		{"projects", "idx_projects_user_active", "user_id, is_active"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
