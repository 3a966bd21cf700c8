package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncCompletion_CompleteSetsStatusAndTimestamp(t *testing.T) {
	now := time.Now()
	task := Task{Status: TaskStatusInProgress, IsCompleted: true}

	task.SyncCompletion(now)

	assert.Equal(t, TaskStatusDone, task.Status)
	assert.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
}

func TestSyncCompletion_PreservesExistingTimestamp(t *testing.T) {
	first := time.Now().Add(-time.Hour)
	task := Task{Status: TaskStatusDone, IsCompleted: true, CompletedAt: &first}

	task.SyncCompletion(time.Now())

	assert.Equal(t, first, *task.CompletedAt)
}

func TestSyncCompletion_IncompleteClearsTimestampAndResetsDone(t *testing.T) {
	done := time.Now()
	task := Task{Status: TaskStatusDone, IsCompleted: false, CompletedAt: &done}

	task.SyncCompletion(time.Now())

	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.Nil(t, task.CompletedAt)
}

func TestSyncCompletion_IncompleteKeepsNonDoneStatus(t *testing.T) {
	task := Task{Status: TaskStatusReview, IsCompleted: false}

	task.SyncCompletion(time.Now())

	assert.Equal(t, TaskStatusReview, task.Status)
}

func TestParseTaskPriority(t *testing.T) {
	for _, valid := range []string{"low", "medium", "high", "urgent"} {
		p, err := ParseTaskPriority(valid)
		assert.NoError(t, err)
		assert.Equal(t, TaskPriority(valid), p)
	}

	_, err := ParseTaskPriority("critical")
	assert.Error(t, err)
	_, err = ParseTaskPriority("")
	assert.Error(t, err)
}

func TestParseTaskStatus(t *testing.T) {
	for _, valid := range []string{"todo", "in_progress", "review", "done"} {
		st, err := ParseTaskStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, TaskStatus(valid), st)
	}

	_, err := ParseTaskStatus("blocked")
	assert.Error(t, err)
}

func TestTagList_RoundTrip(t *testing.T) {
	var task Task
	task.SetTags([]string{"  api ", "", "backend", " urgent"})

	assert.Equal(t, []string{"api", "backend", "urgent"}, task.TagList())

	task.SetTags(nil)
	assert.Empty(t, task.TagList())
	assert.Empty(t, task.Tags)
}

func TestTagList_SkipsEmptySegments(t *testing.T) {
	task := Task{Tags: "a, ,b,,c "}

	assert.Equal(t, []string{"a", "b", "c"}, task.TagList())
}

func TestIsOverdue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.True(t, (&Task{DueDate: &past}).IsOverdue())
	assert.False(t, (&Task{DueDate: &past, IsCompleted: true}).IsOverdue())
	assert.False(t, (&Task{DueDate: &future}).IsOverdue())
	assert.False(t, (&Task{}).IsOverdue())
}

func TestLabels(t *testing.T) {
	task := &Task{Priority: TaskPriorityUrgent, Status: TaskStatusInProgress}
	assert.Equal(t, "Urgent", task.PriorityLabel())
	assert.Equal(t, "In Progress", task.StatusLabel())

	// Unknown values fall back to the defaults.
	task = &Task{Priority: "mystery", Status: "mystery"}
	assert.Equal(t, "Medium", task.PriorityLabel())
	assert.Equal(t, "To Do", task.StatusLabel())
}

func TestDaysUntilDue(t *testing.T) {
	assert.Nil(t, (&Task{}).DaysUntilDue())

	due := time.Now().Add(72*time.Hour + time.Minute)
	days := (&Task{DueDate: &due}).DaysUntilDue()
	assert.NotNil(t, days)
	assert.Equal(t, 3, *days)
}
