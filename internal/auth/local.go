package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists local accounts
type UserStore interface {
	CreateUser(u models.User, passwordHash string) error
	GetUserByEmail(email string) (*models.User, string, error)
}

// Local verifies credentials against accounts kept in a UserStore
type Local struct {
	users UserStore
	cost  int
}

// NewLocal returns a provider hashing passwords with the given bcrypt cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewLocal(users UserStore, cost int) *Local {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Local{users: users, cost: cost}
}

func (l *Local) Signup(ctx context.Context, email, password, name string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{ID: uuid.NewString(), Name: name, Email: email}
	if err := l.users.CreateUser(u, string(hash)); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (l *Local) Login(ctx context.Context, email, password string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	u, hash, err := l.users.GetUserByEmail(email)
	if errors.Is(err, db.ErrNotFound) {
		// keep timing close to a wrong password
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return *u, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no such account"), bcrypt.MinCost)
