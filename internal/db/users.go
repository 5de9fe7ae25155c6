package db

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/tgienger/taskflow/internal/models"
)

// CreateUser stores a new account with its password hash
func (db *DB) CreateUser(u models.User, passwordHash string) error {
	_, err := db.Exec(`
		INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, passwordHash)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// GetUserByEmail retrieves an account and its password hash (case-insensitive email)
func (db *DB) GetUserByEmail(email string) (*models.User, string, error) {
	u := &models.User{}
	var hash string
	err := db.QueryRow(`
		SELECT id, name, email, password_hash
		FROM users WHERE email = ?
	`, email).Scan(&u.ID, &u.Name, &u.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return u, hash, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
