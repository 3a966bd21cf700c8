package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

// The cascade must be all-or-nothing: a failure partway through rolls back
// every prior step so no half-deleted task is ever visible.
func TestDeleteCascade_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	task := &models.Task{ID: 7, Title: "Doomed", UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `task_attachments`").
		WillReturnRows(sqlmock.NewRows([]string{"storage_path"}).AddRow("attachments/2026/08/a.pdf"))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	// Comment removal blows up mid-transaction.
	mock.ExpectExec("UPDATE `task_comments` SET").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	paths, err := repo.DeleteCascade(task)

	assert.Error(t, err)
	assert.Nil(t, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascade_CommitsAndReturnsStoragePaths(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	task := &models.Task{ID: 7, Title: "Done with", UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `task_attachments`").
		WillReturnRows(sqlmock.NewRows([]string{"storage_path"}).
			AddRow("attachments/2026/08/a.pdf").
			AddRow("attachments/2026/08/b.png"))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `task_comments` SET").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `task_attachments` SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	paths, err := repo.DeleteCascade(task)

	require.NoError(t, err)
	assert.Equal(t, []string{"attachments/2026/08/a.pdf", "attachments/2026/08/b.png"}, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteSubtree_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	task := &models.Task{ID: 3, Title: "Root", UserID: 1}

	mock.ExpectBegin()
	// Subtree walk: direct children, then none below them.
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4).AddRow(5))
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := repo.CompleteSubtree(task)

	assert.Error(t, err)
	// The in-memory task stays untouched after a failed transaction.
	assert.False(t, task.IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Saving the root and cascading its subtree share one transaction: when the
// cascade fails, the root's field update rolls back with it instead of
// leaving a committed complete parent over incomplete children.
func TestSaveAndCompleteSubtree_RollsBackRootOnCascadeFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	task := &models.Task{ID: 3, Title: "Root", UserID: 1, IsCompleted: true, Status: models.TaskStatusDone}

	mock.ExpectBegin()
	// Root field update, then the subtree walk.
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4).AddRow(5))
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnError(errors.New("storage unavailable"))
	mock.ExpectRollback()

	err := repo.SaveAndCompleteSubtree(task)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAndCompleteSubtree_CommitsRootAndSubtreeTogether(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	task := &models.Task{ID: 3, Title: "Root", UserID: 1, IsCompleted: true, Status: models.TaskStatusDone}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveAndCompleteSubtree(task)

	require.NoError(t, err)
	assert.True(t, task.IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
