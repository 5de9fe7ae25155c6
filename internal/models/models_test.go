package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityIsValid(t *testing.T) {
	for _, p := range ValidPriorities() {
		assert.True(t, p.IsValid(), "priority %q", p)
	}
	assert.False(t, Priority("").IsValid())
	assert.False(t, Priority("urgent").IsValid())
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{}, false},
		{"due yesterday", Task{DueDate: &yesterday}, true},
		{"due tomorrow", Task{DueDate: &tomorrow}, false},
		{"due yesterday but completed", Task{DueDate: &yesterday, Completed: true}, false},
		{"due exactly now", Task{DueDate: &now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsOverdue(now))
		})
	}
}

func TestTaskJSONLayout(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := Task{
		ID:        "abc",
		Title:     "Project plan",
		Priority:  PriorityHigh,
		Category:  "Travail",
		CreatedAt: created,
		UpdatedAt: created,
	}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2026-01-02T03:04:05Z", raw["createdAt"])
	assert.Equal(t, "high", raw["priority"])
	assert.NotContains(t, raw, "dueDate")
	assert.NotContains(t, raw, "description")
}
