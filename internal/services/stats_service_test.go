package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/repository"
)

// StatsServiceTestSuite defines the test suite for StatsService
type StatsServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *StatsService

	user *models.User
}

// SetupTest runs before each test
func (suite *StatsServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Project{}, &models.Task{})
	suite.Require().NoError(err)

	suite.service = NewStatsService(
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
	)

	suite.user = &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", FirstName: "A", LastName: "B"}
	suite.db.Create(suite.user)
}

// TearDownTest runs after each test
func (suite *StatsServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *StatsServiceTestSuite) createTask(title string, completed bool, due *time.Time) {
	task := &models.Task{
		Title:       title,
		Priority:    models.TaskPriorityMedium,
		Status:      models.TaskStatusTodo,
		IsCompleted: completed,
		DueDate:     due,
		UserID:      suite.user.ID,
	}
	if completed {
		task.Status = models.TaskStatusDone
	}
	suite.db.Create(task)
}

func (suite *StatsServiceTestSuite) TestUserStats_Empty() {
	stats, err := suite.service.UserStats(suite.user.ID)
	suite.Require().NoError(err)

	assert.Zero(suite.T(), stats.TotalTasks)
	assert.Zero(suite.T(), stats.CompletionRate)
}

func (suite *StatsServiceTestSuite) TestUserStats_Counts() {
	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)
	nextMonth := time.Now().Add(30 * 24 * time.Hour)

	suite.createTask("Done", true, nil)
	suite.createTask("Overdue", false, &yesterday)
	suite.createTask("Due soon", false, &tomorrow)
	suite.createTask("Far out", false, &nextMonth)
	suite.createTask("No date", false, nil)
	// A completed task past its date is not overdue.
	suite.createTask("Done late", true, &yesterday)

	stats, err := suite.service.UserStats(suite.user.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(6), stats.TotalTasks)
	assert.Equal(suite.T(), int64(2), stats.CompletedTasks)
	assert.Equal(suite.T(), int64(4), stats.PendingTasks)
	assert.Equal(suite.T(), int64(1), stats.OverdueTasks)
	assert.Equal(suite.T(), int64(1), stats.DueThisWeek)
	assert.InDelta(suite.T(), 33.33, stats.CompletionRate, 0.01)
}

// TestStatsServiceTestSuite runs the test suite
func TestStatsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceTestSuite))
}
