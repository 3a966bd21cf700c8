package repository

import (
	"github.com/taskhive/taskhive/internal/models"
)

// TaskRepository defines the interface for task data access. All lookups are
// scoped by owning user so one user's tasks are invisible to another.
type TaskRepository interface {
	// Create persists a new task
	Create(task *models.Task) error

	// FindByID finds a task owned by the given user, with optional preloading
	FindByID(id, userID uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Save persists changes to an existing task
	Save(task *models.Task) error

	// ListSubtasks returns the direct children of a task
	ListSubtasks(taskID uint64) ([]models.Task, error)

	// CountSubtasks returns total and completed direct-subtask counts
	CountSubtasks(taskID uint64) (total, completed int64, err error)

	// CountComments returns the number of comments on a task
	CountComments(taskID uint64) (int64, error)

	// CompleteSubtree marks a task and every direct and indirect subtask
	// complete in one transaction
	CompleteSubtree(task *models.Task) error

	// SaveAndCompleteSubtree persists the task's fields and completes its
	// subtree in the same transaction
	SaveAndCompleteSubtree(task *models.Task) error

	// DeleteCascade removes a task, its comments, and its attachment rows,
	// and reparents direct children to top level, all in one transaction.
	// It returns the storage paths of the removed attachments so the caller
	// can release the stored bytes afterwards.
	DeleteCascade(task *models.Task) ([]string, error)

	// CountByUser returns aggregate task counts for a user
	CountByUser(userID uint64) (UserTaskCounts, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID       uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	Completed    *bool
	ProjectID    *uint64
	TopLevelOnly bool
	Search       string
	Page         int
	PageSize     int
}

// UserTaskCounts holds the per-user aggregates behind the stats endpoint
type UserTaskCounts struct {
	Total       int64
	Completed   int64
	Overdue     int64
	DueThisWeek int64
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create persists a new project
	Create(project *models.Project) error

	// FindByID finds a project owned by the given user
	FindByID(id, userID uint64) (*models.Project, error)

	// List returns a user's projects, optionally only active ones
	List(userID uint64, activeOnly bool) ([]models.Project, error)

	// Save persists changes to an existing project
	Save(project *models.Project) error

	// DeleteDetachingTasks removes a project and clears the project
	// reference on its tasks in one transaction
	DeleteDetachingTasks(project *models.Project) error

	// Stats computes task counts for a project
	Stats(projectID uint64) (models.ProjectStats, error)
}

// CommentRepository defines the interface for task comment data access
type CommentRepository interface {
	// Create persists a new comment
	Create(comment *models.TaskComment) error

	// FindByID finds a comment by ID
	FindByID(id uint64) (*models.TaskComment, error)

	// ListByTask returns a task's comments, newest first
	ListByTask(taskID uint64) ([]models.TaskComment, error)

	// Delete removes a comment
	Delete(id uint64) error
}

// AttachmentRepository defines the interface for task attachment metadata
type AttachmentRepository interface {
	// Create persists a new attachment record
	Create(attachment *models.TaskAttachment) error

	// FindByID finds an attachment by ID
	FindByID(id uint64) (*models.TaskAttachment, error)

	// ListByTask returns a task's attachments
	ListByTask(taskID uint64) ([]models.TaskAttachment, error)

	// Delete removes an attachment record
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsernameOrEmail finds a user by either identifier (login form)
	FindByUsernameOrEmail(identifier string) (*models.User, error)

	// Save persists changes to an existing user
	Save(user *models.User) error

	// DeleteCascade removes a user together with their projects, tasks, and
	// the tasks' comments and attachments, in one transaction
	DeleteCascade(userID uint64) error
}
