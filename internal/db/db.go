package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Slot keys for the two durable records
const (
	TasksSlot = "taskflow-tasks"
	UserSlot  = "taskflow-user"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a user with the same email already exists
	ErrEmailTaken = errors.New("email already registered")
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// New opens the database file at path, creating parent directories and
// initializing the schema
func New(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// GetSlot retrieves a slot value by key. An absent slot yields "".
func (db *DB) GetSlot(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSlot replaces a slot value in a single statement
func (db *DB) SetSlot(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	return err
}

// DeleteSlot removes a slot. Deleting an absent slot is not an error.
func (db *DB) DeleteSlot(key string) error {
	_, err := db.Exec("DELETE FROM slots WHERE key = ?", key)
	return err
}
