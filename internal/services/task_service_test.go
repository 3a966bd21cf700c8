package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/storage"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	files   *storage.MemoryStorage
	service *TaskService

	user  *models.User
	other *models.User
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.TaskComment{},
		&models.TaskAttachment{},
	)
	suite.Require().NoError(err)

	suite.files = storage.NewMemoryStorage()
	suite.service = NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		suite.files,
		zap.NewNop(),
	)

	suite.user = suite.createTestUser("alice", "alice@example.com")
	suite.other = suite.createTestUser("bob", "bob@example.com")
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTestUser(username, email string) *models.User {
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskServiceTestSuite) createTestProject(name string, userID uint64) *models.Project {
	project := &models.Project{
		Name:   name,
		Color:  models.DefaultProjectColor,
		UserID: userID,
	}
	suite.db.Create(project)
	return project
}

func (suite *TaskServiceTestSuite) createTestTask(title string, userID uint64, parentID *uint64) *models.Task {
	task := &models.Task{
		Title:        title,
		Priority:     models.TaskPriorityMedium,
		Status:       models.TaskStatusTodo,
		UserID:       userID,
		ParentTaskID: parentID,
	}
	suite.db.Create(task)
	return task
}

func (suite *TaskServiceTestSuite) reload(id uint64) *models.Task {
	var task models.Task
	err := suite.db.First(&task, id).Error
	suite.Require().NoError(err)
	return &task
}

func (suite *TaskServiceTestSuite) TestCreateTask_Defaults() {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:  "  Write report  ",
		UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), "Write report", task.Title)
	assert.Equal(suite.T(), models.TaskPriorityMedium, task.Priority)
	assert.Equal(suite.T(), models.TaskStatusTodo, task.Status)
	assert.False(suite.T(), task.IsCompleted)
	assert.Nil(suite.T(), task.CompletedAt)
}

func (suite *TaskServiceTestSuite) TestCreateTask_EmptyTitle() {
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:  "   ",
		UserID: suite.user.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrTitleRequired)
}

func (suite *TaskServiceTestSuite) TestCreateTask_InvalidEnums() {
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:    "Task",
		Priority: "critical",
		UserID:   suite.user.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidPriority)

	_, err = suite.service.CreateTask(CreateTaskInput{
		Title:  "Task",
		Status: "blocked",
		UserID: suite.user.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidStatus)
}

func (suite *TaskServiceTestSuite) TestCreateTask_NegativeHours() {
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:          "Task",
		EstimatedHours: -1,
		UserID:         suite.user.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrNegativeHours)
}

func (suite *TaskServiceTestSuite) TestCreateTask_StatusDoneCompletesTask() {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:  "Already done",
		Status: "done",
		UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	assert.True(suite.T(), task.IsCompleted)
	assert.NotNil(suite.T(), task.CompletedAt)
	// The requested status survives; it is not reset to todo.
	assert.Equal(suite.T(), models.TaskStatusDone, task.Status)

	stored := suite.reload(task.ID)
	assert.True(suite.T(), stored.IsCompleted)
	assert.Equal(suite.T(), models.TaskStatusDone, stored.Status)
	assert.NotNil(suite.T(), stored.CompletedAt)
}

// Creating a task as done produces the same state as creating it open and
// updating it to done, and touches no other task.
func (suite *TaskServiceTestSuite) TestCreateTask_StatusDoneMatchesUpdatePath() {
	bystander := suite.createTestTask("Untouched", suite.user.ID, nil)

	created, err := suite.service.CreateTask(CreateTaskInput{
		Title:  "Done at birth",
		Status: "done",
		UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	open := suite.createTestTask("Done later", suite.user.ID, nil)
	done := "done"
	updated, err := suite.service.UpdateTask(open.ID, suite.user.ID, UpdateTaskInput{Status: &done})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), updated.IsCompleted, created.IsCompleted)
	assert.Equal(suite.T(), updated.Status, created.Status)
	assert.NotNil(suite.T(), created.CompletedAt)
	assert.NotNil(suite.T(), updated.CompletedAt)

	assert.False(suite.T(), suite.reload(bystander.ID).IsCompleted)
}

func (suite *TaskServiceTestSuite) TestCreateTask_ParentOtherUserRejected() {
	foreign := suite.createTestTask("Foreign", suite.other.ID, nil)

	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:        "Child",
		ParentTaskID: &foreign.ID,
		UserID:       suite.user.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrParentTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestCreateTask_ProjectOtherUserRejected() {
	foreign := suite.createTestProject("Foreign", suite.other.ID)

	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:     "Task",
		ProjectID: &foreign.ID,
		UserID:    suite.user.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrProjectNotFound)
}

func (suite *TaskServiceTestSuite) TestCreateTask_TagsRoundTrip() {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:  "Tagged",
		Tags:   []string{" urgent ", "", "backend", "api "},
		UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), []string{"urgent", "backend", "api"}, task.TagList())
}

func (suite *TaskServiceTestSuite) TestGetTask_OwnershipIsolation() {
	task := suite.createTestTask("Private", suite.other.ID, nil)

	_, err := suite.service.GetTask(task.ID, suite.user.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestGetTask_Progress() {
	parent := suite.createTestTask("Parent", suite.user.ID, nil)
	for i := 0; i < 3; i++ {
		suite.createTestTask("Open subtask", suite.user.ID, &parent.ID)
	}
	done := suite.createTestTask("Done subtask", suite.user.ID, &parent.ID)
	suite.db.Model(done).Updates(map[string]any{"is_completed": true, "status": models.TaskStatusDone})

	detail, err := suite.service.GetTask(parent.ID, suite.user.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(4), detail.SubtaskCount)
	assert.Equal(suite.T(), int64(1), detail.CompletedSubtasks)
	assert.Equal(suite.T(), 25, detail.ProgressPercentage)
	assert.Len(suite.T(), detail.Subtasks, 4)
}

func (suite *TaskServiceTestSuite) TestGetTask_ProgressLeaf() {
	leaf := suite.createTestTask("Leaf", suite.user.ID, nil)

	detail, err := suite.service.GetTask(leaf.ID, suite.user.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, detail.ProgressPercentage)

	_, err = suite.service.MarkComplete(leaf.ID, suite.user.ID)
	suite.Require().NoError(err)

	detail, err = suite.service.GetTask(leaf.ID, suite.user.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 100, detail.ProgressPercentage)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_StatusDoneSyncsFlag() {
	task := suite.createTestTask("Task", suite.user.ID, nil)

	status := "done"
	updated, err := suite.service.UpdateTask(task.ID, suite.user.ID, UpdateTaskInput{
		Status: &status,
	})
	suite.Require().NoError(err)

	assert.True(suite.T(), updated.IsCompleted)
	assert.Equal(suite.T(), models.TaskStatusDone, updated.Status)
	assert.NotNil(suite.T(), updated.CompletedAt)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_FlagFalseResetsDoneStatus() {
	task := suite.createTestTask("Task", suite.user.ID, nil)
	_, err := suite.service.MarkComplete(task.ID, suite.user.ID)
	suite.Require().NoError(err)

	incomplete := false
	updated, err := suite.service.UpdateTask(task.ID, suite.user.ID, UpdateTaskInput{
		IsCompleted: &incomplete,
	})
	suite.Require().NoError(err)

	assert.False(suite.T(), updated.IsCompleted)
	assert.Equal(suite.T(), models.TaskStatusTodo, updated.Status)
	assert.Nil(suite.T(), updated.CompletedAt)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_FlagTrueCascades() {
	parent := suite.createTestTask("Parent", suite.user.ID, nil)
	child := suite.createTestTask("Child", suite.user.ID, &parent.ID)
	grandchild := suite.createTestTask("Grandchild", suite.user.ID, &child.ID)

	completed := true
	_, err := suite.service.UpdateTask(parent.ID, suite.user.ID, UpdateTaskInput{
		IsCompleted: &completed,
	})
	suite.Require().NoError(err)

	for _, id := range []uint64{parent.ID, child.ID, grandchild.ID} {
		got := suite.reload(id)
		assert.True(suite.T(), got.IsCompleted)
		assert.Equal(suite.T(), models.TaskStatusDone, got.Status)
		assert.NotNil(suite.T(), got.CompletedAt)
	}
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ClearDueDate() {
	due := time.Now().Add(48 * time.Hour)
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:   "Dated",
		DueDate: &due,
		UserID:  suite.user.ID,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(task.DueDate)

	updated, err := suite.service.UpdateTask(task.ID, suite.user.ID, UpdateTaskInput{
		ClearDueDate: true,
	})
	suite.Require().NoError(err)
	assert.Nil(suite.T(), updated.DueDate)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_SelfParentRejected() {
	task := suite.createTestTask("Task", suite.user.ID, nil)

	_, err := suite.service.UpdateTask(task.ID, suite.user.ID, UpdateTaskInput{
		ParentTaskID: &task.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrParentCycle)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_DescendantParentRejected() {
	root := suite.createTestTask("Root", suite.user.ID, nil)
	child := suite.createTestTask("Child", suite.user.ID, &root.ID)
	grandchild := suite.createTestTask("Grandchild", suite.user.ID, &child.ID)

	_, err := suite.service.UpdateTask(root.ID, suite.user.ID, UpdateTaskInput{
		ParentTaskID: &grandchild.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrParentCycle)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ReparentAndClearParent() {
	a := suite.createTestTask("A", suite.user.ID, nil)
	b := suite.createTestTask("B", suite.user.ID, nil)
	child := suite.createTestTask("Child", suite.user.ID, &a.ID)

	updated, err := suite.service.UpdateTask(child.ID, suite.user.ID, UpdateTaskInput{
		ParentTaskID: &b.ID,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.ParentTaskID)
	assert.Equal(suite.T(), b.ID, *updated.ParentTaskID)

	updated, err = suite.service.UpdateTask(child.ID, suite.user.ID, UpdateTaskInput{
		ClearParent: true,
	})
	suite.Require().NoError(err)
	assert.Nil(suite.T(), updated.ParentTaskID)
}

func (suite *TaskServiceTestSuite) TestMarkComplete_CascadesToSubtree() {
	root := suite.createTestTask("Root", suite.user.ID, nil)
	child1 := suite.createTestTask("Child 1", suite.user.ID, &root.ID)
	child2 := suite.createTestTask("Child 2", suite.user.ID, &root.ID)
	grandchild := suite.createTestTask("Grandchild", suite.user.ID, &child1.ID)
	unrelated := suite.createTestTask("Unrelated", suite.user.ID, nil)

	task, err := suite.service.MarkComplete(root.ID, suite.user.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), task.IsCompleted)

	for _, id := range []uint64{root.ID, child1.ID, child2.ID, grandchild.ID} {
		got := suite.reload(id)
		assert.True(suite.T(), got.IsCompleted, "task %d should be completed", id)
		assert.Equal(suite.T(), models.TaskStatusDone, got.Status)
		assert.NotNil(suite.T(), got.CompletedAt)
	}

	assert.False(suite.T(), suite.reload(unrelated.ID).IsCompleted)
}

func (suite *TaskServiceTestSuite) TestMarkComplete_AlreadyCompleteSubtaskUntouched() {
	root := suite.createTestTask("Root", suite.user.ID, nil)
	child := suite.createTestTask("Child", suite.user.ID, &root.ID)

	_, err := suite.service.MarkComplete(child.ID, suite.user.ID)
	suite.Require().NoError(err)
	firstCompletion := suite.reload(child.ID).CompletedAt
	suite.Require().NotNil(firstCompletion)

	time.Sleep(10 * time.Millisecond)

	_, err = suite.service.MarkComplete(root.ID, suite.user.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), firstCompletion.Unix(), suite.reload(child.ID).CompletedAt.Unix())
}

func (suite *TaskServiceTestSuite) TestMarkIncomplete_NoCascade() {
	root := suite.createTestTask("Root", suite.user.ID, nil)
	child := suite.createTestTask("Child", suite.user.ID, &root.ID)

	_, err := suite.service.MarkComplete(root.ID, suite.user.ID)
	suite.Require().NoError(err)

	task, err := suite.service.MarkIncomplete(root.ID, suite.user.ID)
	suite.Require().NoError(err)

	assert.False(suite.T(), task.IsCompleted)
	assert.Equal(suite.T(), models.TaskStatusTodo, task.Status)
	assert.Nil(suite.T(), task.CompletedAt)

	// Reopening a parent leaves finished subtasks finished.
	got := suite.reload(child.ID)
	assert.True(suite.T(), got.IsCompleted)
	assert.Equal(suite.T(), models.TaskStatusDone, got.Status)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_CascadeAndReparent() {
	ctx := context.Background()

	root := suite.createTestTask("Root", suite.user.ID, nil)
	child1 := suite.createTestTask("Child 1", suite.user.ID, &root.ID)
	child2 := suite.createTestTask("Child 2", suite.user.ID, &root.ID)

	for i := 0; i < 3; i++ {
		suite.db.Create(&models.TaskComment{
			Content: "note",
			TaskID:  root.ID,
			UserID:  suite.user.ID,
		})
	}

	key, err := suite.files.Save(ctx, "report.pdf", "application/pdf", strings.NewReader("data"))
	suite.Require().NoError(err)
	suite.db.Create(&models.TaskAttachment{
		FileName:         "report.pdf",
		OriginalFileName: "report.pdf",
		FileSize:         4,
		MimeType:         "application/pdf",
		StoragePath:      key,
		TaskID:           root.ID,
		UploadedBy:       suite.user.ID,
	})

	err = suite.service.DeleteTask(ctx, root.ID, suite.user.ID)
	suite.Require().NoError(err)

	_, err = suite.service.GetTask(root.ID, suite.user.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)

	// Direct subtasks survive as top-level tasks.
	for _, id := range []uint64{child1.ID, child2.ID} {
		got := suite.reload(id)
		assert.Nil(suite.T(), got.ParentTaskID)
	}

	var commentCount, attachmentCount int64
	suite.db.Model(&models.TaskComment{}).Where("task_id = ?", root.ID).Count(&commentCount)
	suite.db.Model(&models.TaskAttachment{}).Where("task_id = ?", root.ID).Count(&attachmentCount)
	assert.Zero(suite.T(), commentCount)
	assert.Zero(suite.T(), attachmentCount)

	// Stored bytes are gone too.
	assert.Zero(suite.T(), suite.files.Len())
}

func (suite *TaskServiceTestSuite) TestDeleteTask_StorageFailureTolerated() {
	ctx := context.Background()

	task := suite.createTestTask("Task", suite.user.ID, nil)
	key, err := suite.files.Save(ctx, "a.txt", "text/plain", strings.NewReader("x"))
	suite.Require().NoError(err)
	suite.db.Create(&models.TaskAttachment{
		FileName:         "a.txt",
		OriginalFileName: "a.txt",
		FileSize:         1,
		MimeType:         "text/plain",
		StoragePath:      key,
		TaskID:           task.ID,
		UploadedBy:       suite.user.ID,
	})

	suite.files.FailDelete = true

	err = suite.service.DeleteTask(ctx, task.ID, suite.user.ID)
	suite.Require().NoError(err)

	// Metadata is gone even though byte removal failed.
	_, err = suite.service.GetTask(task.ID, suite.user.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)

	var attachmentCount int64
	suite.db.Model(&models.TaskAttachment{}).Where("task_id = ?", task.ID).Count(&attachmentCount)
	assert.Zero(suite.T(), attachmentCount)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_OwnershipIsolation() {
	task := suite.createTestTask("Private", suite.other.ID, nil)

	err := suite.service.DeleteTask(context.Background(), task.ID, suite.user.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestListTasks_Filters() {
	project := suite.createTestProject("Work", suite.user.ID)

	high := "high"
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title: "High priority", Priority: high, UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	done, err := suite.service.CreateTask(CreateTaskInput{
		Title: "Finished", Status: "done", UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	inProject, err := suite.service.CreateTask(CreateTaskInput{
		Title: "Project task", ProjectID: &project.ID, UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.service.CreateTask(CreateTaskInput{
		Title: "Subtask", ParentTaskID: &inProject.ID, UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	// Foreign tasks never show up.
	suite.createTestTask("Foreign", suite.other.ID, nil)

	tasks, total, err := suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(4), total)
	assert.Len(suite.T(), tasks, 4)

	tasks, _, err = suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID, Status: "completed"})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), done.ID, tasks[0].ID)

	tasks, _, err = suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID, Status: "pending"})
	suite.Require().NoError(err)
	assert.Len(suite.T(), tasks, 3)

	tasks, _, err = suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID, Priority: "high"})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "High priority", tasks[0].Title)

	tasks, _, err = suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID, ProjectID: &project.ID})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), inProject.ID, tasks[0].ID)

	tasks, _, err = suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID, TopLevelOnly: true})
	suite.Require().NoError(err)
	assert.Len(suite.T(), tasks, 3)

	tasks, _, err = suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID, Search: "finish"})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), done.ID, tasks[0].ID)

	_, _, err = suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID, Status: "bogus"})
	assert.ErrorIs(suite.T(), err, ErrInvalidStatus)
}

func (suite *TaskServiceTestSuite) TestListTasks_OrderIncompleteFirst() {
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title: "Done", Status: "done", UserID: suite.user.ID,
	})
	suite.Require().NoError(err)
	_, err = suite.service.CreateTask(CreateTaskInput{
		Title: "Open urgent", Priority: "urgent", UserID: suite.user.ID,
	})
	suite.Require().NoError(err)
	_, err = suite.service.CreateTask(CreateTaskInput{
		Title: "Open low", Priority: "low", UserID: suite.user.ID,
	})
	suite.Require().NoError(err)

	tasks, _, err := suite.service.ListTasks(ListTasksInput{UserID: suite.user.ID})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 3)

	assert.Equal(suite.T(), "Open urgent", tasks[0].Title)
	assert.Equal(suite.T(), "Open low", tasks[1].Title)
	assert.Equal(suite.T(), "Done", tasks[2].Title)
}

// TestTaskServiceTestSuite runs the test suite
func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
