package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/logger"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/tasks"
	"github.com/tgienger/taskflow/internal/ui/views"
)

type fakeSession struct {
	user      *models.User
	logoutErr error
	loggedOut bool
}

func (f *fakeSession) Login(_ context.Context, email, _ string) (models.User, error) {
	u := models.User{ID: "u1", Name: "ada", Email: email}
	f.user = &u
	return u, nil
}

func (f *fakeSession) Signup(_ context.Context, email, _, name string) (models.User, error) {
	u := models.User{ID: "u1", Name: name, Email: email}
	f.user = &u
	return u, nil
}

func (f *fakeSession) Current() *models.User { return f.user }

func (f *fakeSession) Logout() error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.user = nil
	f.loggedOut = true
	return nil
}

type memoryTasks struct{ saved []models.Task }

func (m *memoryTasks) LoadTasks() ([]models.Task, error) { return m.saved, nil }
func (m *memoryTasks) SaveTasks(ts []models.Task) error {
	m.saved = ts
	return nil
}

func newTestApp(t *testing.T, s *fakeSession) *App {
	t.Helper()
	store, err := tasks.Open(&memoryTasks{})
	require.NoError(t, err)
	opts := views.TaskViewOptions{Now: func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local) }}
	a := NewApp(s, store, opts, logger.Discard())
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	return a
}

// drain runs cmd and feeds the loader and resize results back to the app.
func drain(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(a, c)
		}
	case tea.WindowSizeMsg:
		a.Update(msg)
	default:
		_, next := a.Update(msg)
		if next != nil && a.CurrentView() == ViewTasks {
			drain(a, next)
		}
	}
}

func TestAppStartsOnAuthWithoutUser(t *testing.T) {
	a := newTestApp(t, &fakeSession{})
	assert.Equal(t, ViewAuth, a.CurrentView())
	assert.Nil(t, a.Init())
	assert.Contains(t, a.View(), "Log in")
}

func TestAppResumesRememberedUser(t *testing.T) {
	a := newTestApp(t, &fakeSession{user: &models.User{ID: "u1", Name: "marie", Email: "marie@example.com"}})
	require.Equal(t, ViewTasks, a.CurrentView())
	drain(a, a.Init())
	assert.Contains(t, a.View(), "marie")
	assert.Contains(t, a.View(), "No tasks found")
}

func TestAppLoginOpensDashboard(t *testing.T) {
	a := newTestApp(t, &fakeSession{})

	_, cmd := a.Update(views.LoggedIn{User: models.User{ID: "u1", Name: "ada", Email: "ada@example.com"}})
	assert.Equal(t, ViewTasks, a.CurrentView())
	drain(a, cmd)
	assert.Contains(t, a.View(), "ada")
	assert.Contains(t, a.View(), "0 of 0 tasks completed")
}

func TestAppLogoutReturnsToAuth(t *testing.T) {
	s := &fakeSession{user: &models.User{ID: "u1", Name: "marie"}}
	a := newTestApp(t, s)
	drain(a, a.Init())

	a.Update(views.LogoutRequested{})
	assert.True(t, s.loggedOut)
	assert.Equal(t, ViewAuth, a.CurrentView())
	assert.Contains(t, a.View(), "Sign up")
}

func TestAppLogoutFailureKeepsDashboard(t *testing.T) {
	s := &fakeSession{user: &models.User{ID: "u1", Name: "marie"}, logoutErr: errors.New("disk full")}
	a := newTestApp(t, s)

	a.Update(views.LogoutRequested{})
	assert.Equal(t, ViewTasks, a.CurrentView())
}
