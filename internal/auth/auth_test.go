package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type memorySlots struct {
	values  map[string]string
	failing bool
}

func newMemorySlots() *memorySlots {
	return &memorySlots{values: make(map[string]string)}
}

func (m *memorySlots) GetSlot(key string) (string, error) { return m.values[key], nil }

func (m *memorySlots) SetSlot(key, value string) error {
	if m.failing {
		return errors.New("disk full")
	}
	m.values[key] = value
	return nil
}

func (m *memorySlots) DeleteSlot(key string) error {
	delete(m.values, key)
	return nil
}

type failingProvider struct{ err error }

func (f failingProvider) Login(context.Context, string, string) (models.User, error) {
	return models.User{}, f.err
}

func (f failingProvider) Signup(context.Context, string, string, string) (models.User, error) {
	return models.User{}, f.err
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "taskflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSimulatedLogin(t *testing.T) {
	p := NewSimulated(0)
	u, err := p.Login(context.Background(), "marie.curie@example.com", "anything")
	require.NoError(t, err)
	assert.Equal(t, "marie.curie", u.Name)
	assert.Equal(t, "marie.curie@example.com", u.Email)
	assert.NotEmpty(t, u.ID)

	again, err := p.Login(context.Background(), "marie.curie@example.com", "anything")
	require.NoError(t, err)
	assert.NotEqual(t, u.ID, again.ID)
}

func TestSimulatedSignupUsesName(t *testing.T) {
	u, err := NewSimulated(0).Signup(context.Background(), "a@b.fr", "pw", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
}

func TestSimulatedWaitsAndCancels(t *testing.T) {
	p := NewSimulated(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Login(ctx, "a@b.fr", "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalSignupAndLogin(t *testing.T) {
	p := NewLocal(newTestDB(t), bcrypt.MinCost)
	ctx := context.Background()

	created, err := p.Signup(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	got, err := p.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = p.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Signup(ctx, "ada@example.com", "other", "Ada again")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLocalCostFallsBack(t *testing.T) {
	p := NewLocal(newTestDB(t), 99)
	assert.Equal(t, bcrypt.DefaultCost, p.cost)
}

func TestSessionLoginPersistsUser(t *testing.T) {
	slots := newMemorySlots()
	s, err := NewSession(NewSimulated(0), slots, nil)
	require.NoError(t, err)
	assert.Nil(t, s.Current())

	u, err := s.Login(context.Background(), "  jean@example.fr ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jean", u.Name)
	require.NotNil(t, s.Current())
	assert.Equal(t, u, *s.Current())
	assert.NotEmpty(t, slots.values[db.UserSlot])

	restored, err := NewSession(NewSimulated(0), slots, nil)
	require.NoError(t, err)
	require.NotNil(t, restored.Current())
	assert.Equal(t, u, *restored.Current())

	require.NoError(t, restored.Logout())
	assert.Nil(t, restored.Current())
	assert.NotContains(t, slots.values, db.UserSlot)
}

func TestSessionValidatesInput(t *testing.T) {
	s, err := NewSession(NewSimulated(0), newMemorySlots(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Login(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "email is required")

	_, err = s.Login(ctx, "not-an-email", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Login(ctx, "a@b.fr", "")
	assert.ErrorContains(t, err, "password is required")

	_, err = s.Signup(ctx, "a@b.fr", "pw", "   ")
	assert.ErrorContains(t, err, "name is required")

	assert.Nil(t, s.Current())
}

func TestSessionProviderFailureKeepsSignedOut(t *testing.T) {
	slots := newMemorySlots()
	s, err := NewSession(failingProvider{err: ErrInvalidCredentials}, slots, nil)
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "a@b.fr", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, s.Current())
	assert.Empty(t, slots.values)
}

func TestSessionWriteFailure(t *testing.T) {
	slots := newMemorySlots()
	slots.failing = true
	s, err := NewSession(NewSimulated(0), slots, nil)
	require.NoError(t, err)

	_, err = s.Signup(context.Background(), "a@b.fr", "pw", "A")
	assert.Error(t, err)
	assert.Nil(t, s.Current())
}

func TestSessionIgnoresUnreadableRecord(t *testing.T) {
	slots := newMemorySlots()
	slots.values[db.UserSlot] = "{not json"
	s, err := NewSession(NewSimulated(0), slots, nil)
	require.NoError(t, err)
	assert.Nil(t, s.Current())
}

// abandoningProvider succeeds, but only after the caller has given up
type abandoningProvider struct{ cancel context.CancelFunc }

func (a abandoningProvider) Login(_ context.Context, email, _ string) (models.User, error) {
	a.cancel()
	return models.User{ID: "u1", Name: "marie", Email: email}, nil
}

func (a abandoningProvider) Signup(_ context.Context, email, _, name string) (models.User, error) {
	a.cancel()
	return models.User{ID: "u1", Name: name, Email: email}, nil
}

func TestSessionCancelledDuringCallStaysSignedOut(t *testing.T) {
	for _, op := range []string{"login", "signup"} {
		t.Run(op, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			slots := newMemorySlots()
			s, err := NewSession(abandoningProvider{cancel: cancel}, slots, nil)
			require.NoError(t, err)

			if op == "login" {
				_, err = s.Login(ctx, "marie@example.com", "pw")
			} else {
				_, err = s.Signup(ctx, "marie@example.com", "pw", "Marie")
			}
			assert.ErrorIs(t, err, context.Canceled)
			assert.Nil(t, s.Current())
			assert.NotContains(t, slots.values, db.UserSlot)
		})
	}
}

// cancellingUsers cancels the request while the account is being looked up
type cancellingUsers struct {
	*db.DB
	cancel context.CancelFunc
}

func (c cancellingUsers) GetUserByEmail(email string) (*models.User, string, error) {
	c.cancel()
	return c.DB.GetUserByEmail(email)
}

func TestLocalLoginCancelledDuringCheck(t *testing.T) {
	database := newTestDB(t)
	_, err := NewLocal(database, bcrypt.MinCost).Signup(context.Background(), "marie@example.com", "pw", "Marie")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewLocal(cancellingUsers{DB: database, cancel: cancel}, bcrypt.MinCost)

	_, err = p.Login(ctx, "marie@example.com", "pw")
	assert.ErrorIs(t, err, context.Canceled)
}
