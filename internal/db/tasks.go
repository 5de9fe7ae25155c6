package db

import (
	"encoding/json"
	"fmt"

	"github.com/tgienger/taskflow/internal/models"
)

// LoadTasks decodes the task slot. An absent slot is an empty collection.
func (db *DB) LoadTasks() ([]models.Task, error) {
	raw, err := db.GetSlot(TasksSlot)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode %s slot: %w", TasksSlot, err)
	}
	return tasks, nil
}

// SaveTasks rewrites the whole task collection
func (db *DB) SaveTasks(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode %s slot: %w", TasksSlot, err)
	}
	return db.SetSlot(TasksSlot, string(data))
}
