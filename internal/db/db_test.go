package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "taskflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSlots(t *testing.T) {
	database := newTestDB(t)

	value, err := database.GetSlot("missing")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, database.SetSlot("k", "one"))
	require.NoError(t, database.SetSlot("k", "two"))
	value, err = database.GetSlot("k")
	require.NoError(t, err)
	assert.Equal(t, "two", value)

	require.NoError(t, database.DeleteSlot("k"))
	require.NoError(t, database.DeleteSlot("k"))
	value, err = database.GetSlot("k")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestTasksRoundTrip(t *testing.T) {
	database := newTestDB(t)

	tasks, err := database.LoadTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 4, 1, 9, 30, 0, 123, time.UTC)
	in := []models.Task{
		{ID: "a", Title: "Project plan", Priority: models.PriorityHigh, Category: "Travail", DueDate: &due, CreatedAt: created, UpdatedAt: created},
		{ID: "b", Title: "Groceries", Priority: models.PriorityLow, Category: "Personnel", Completed: true, CreatedAt: created, UpdatedAt: created},
	}
	require.NoError(t, database.SaveTasks(in))

	out, err := database.LoadTasks()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	require.NotNil(t, out[0].DueDate)
	assert.True(t, due.Equal(*out[0].DueDate))
	assert.True(t, created.Equal(out[0].CreatedAt))
	assert.Nil(t, out[1].DueDate)
	assert.True(t, out[1].Completed)
}

func TestSaveEmptyCollection(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, database.SaveTasks(nil))
	raw, err := database.GetSlot(TasksSlot)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestLoadTasksMalformed(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, database.SetSlot(TasksSlot, "{not json"))
	_, err := database.LoadTasks()
	assert.Error(t, err)
}

func TestUsers(t *testing.T) {
	database := newTestDB(t)

	u := models.User{ID: "u1", Name: "Marie", Email: "marie@example.com"}
	require.NoError(t, database.CreateUser(u, "hash"))

	got, hash, err := database.GetUserByEmail("MARIE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, *got)
	assert.Equal(t, "hash", hash)

	err = database.CreateUser(models.User{ID: "u2", Name: "Other", Email: "Marie@Example.com"}, "x")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = database.GetUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
