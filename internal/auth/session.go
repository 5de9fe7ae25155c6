package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/models"
)

var validate = validator.New()

// Slots is the durable key-value storage holding the signed-in user
type Slots interface {
	GetSlot(key string) (string, error)
	SetSlot(key, value string) error
	DeleteSlot(key string) error
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signupForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Name     string `validate:"required,max=100"`
}

// Session tracks the signed-in user across runs
type Session struct {
	mu       sync.Mutex
	provider Provider
	slots    Slots
	current  *models.User
	log      *slog.Logger
}

// NewSession restores the stored user, if any. A stored record that cannot be
// decoded is treated as signed out.
func NewSession(p Provider, slots Slots, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{provider: p, slots: slots, log: log}

	raw, err := slots.GetSlot(db.UserSlot)
	if err != nil {
		return nil, fmt.Errorf("read user slot: %w", err)
	}
	if raw == "" {
		return s, nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Warn("discarding unreadable user record", "error", err)
		return s, nil
	}
	s.current = &u
	return s, nil
}

// Current returns the signed-in user or nil
func (s *Session) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Login verifies credentials with the provider and stores the user
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if err := check(loginForm{Email: email, Password: password}); err != nil {
		return models.User{}, err
	}
	u, err := s.provider.Login(ctx, email, password)
	if err != nil {
		s.log.Info("login failed", "email", email, "error", err)
		return models.User{}, err
	}
	// a caller that gave up must not end up signed in
	if err := ctx.Err(); err != nil {
		s.log.Info("login cancelled", "email", email)
		return models.User{}, err
	}
	return u, s.remember(u)
}

// Signup registers with the provider and stores the user
func (s *Session) Signup(ctx context.Context, email, password, name string) (models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if err := check(signupForm{Email: email, Password: password, Name: name}); err != nil {
		return models.User{}, err
	}
	u, err := s.provider.Signup(ctx, email, password, name)
	if err != nil {
		s.log.Info("signup failed", "email", email, "error", err)
		return models.User{}, err
	}
	// a caller that gave up must not end up signed in
	if err := ctx.Err(); err != nil {
		s.log.Info("signup cancelled", "email", email)
		return models.User{}, err
	}
	return u, s.remember(u)
}

// Logout forgets the signed-in user
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.slots.DeleteSlot(db.UserSlot); err != nil {
		return fmt.Errorf("clear user slot: %w", err)
	}
	s.current = nil
	s.log.Info("signed out")
	return nil
}

func (s *Session) remember(u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.slots.SetSlot(db.UserSlot, string(data)); err != nil {
		return fmt.Errorf("write user slot: %w", err)
	}
	s.current = &u
	s.log.Info("signed in", "user_id", u.ID, "email", u.Email)
	return nil
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	case "email":
		return fmt.Errorf("%w: %s is not a valid address", ErrInvalidInput, field)
	}
	return fmt.Errorf("%w: %s is invalid", ErrInvalidInput, field)
}
