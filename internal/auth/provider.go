// Package auth establishes who is using the dashboard. Providers answer login
// and signup requests; a Session remembers the result in the user slot.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/taskflow/internal/models"
)

// DefaultDelay is how long the simulated provider takes to answer
const DefaultDelay = time.Second

var (
	// ErrInvalidCredentials is returned when the email or password is wrong
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when signing up with a registered email
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidInput is returned when the login or signup form is incomplete
	ErrInvalidInput = errors.New("invalid input")
)

// Provider resolves credentials to a user. Calls may block and must honor
// ctx cancellation.
type Provider interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Signup(ctx context.Context, email, password, name string) (models.User, error)
}

// Simulated accepts any credentials after Delay
type Simulated struct {
	Delay time.Duration
}

// NewSimulated returns a provider that waits delay before answering
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{Delay: delay}
}

func (s *Simulated) Login(ctx context.Context, email, _ string) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	return models.User{ID: uuid.NewString(), Name: localPart(email), Email: email}, nil
}

func (s *Simulated) Signup(ctx context.Context, email, _, name string) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	return models.User{ID: uuid.NewString(), Name: name, Email: email}, nil
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
