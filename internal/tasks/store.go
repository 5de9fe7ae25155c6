// Package tasks owns the authoritative task collection.
//
// Every mutation rewrites the whole collection through a Persister before the
// in-memory copy is replaced, so a failed write leaves the store unchanged.
// Update, Delete and ToggleComplete on an unknown id are silent no-ops.
package tasks

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/taskflow/internal/models"
)

// DefaultCategory is applied to tasks created without a category
const DefaultCategory = "Personnel"

const maxIDAttempts = 3

var (
	// ErrValidation is returned when task fields are missing or malformed
	ErrValidation = errors.New("invalid task")

	// ErrNotFound is returned by Resolve when no task matches
	ErrNotFound = errors.New("task not found")

	// ErrAmbiguousID is returned by Resolve when a prefix matches several tasks
	ErrAmbiguousID = errors.New("ambiguous task id")
)

// Persister stores and retrieves the full task collection
type Persister interface {
	LoadTasks() ([]models.Task, error)
	SaveTasks([]models.Task) error
}

// Store is the task collection. It is safe for concurrent use.
type Store struct {
	mu              sync.Mutex
	persister       Persister
	tasks           []models.Task
	now             func() time.Time
	newID           func() string
	defaultCategory string
	log             *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithDefaultCategory sets the category given to tasks created without one
func WithDefaultCategory(category string) Option {
	return func(s *Store) {
		if c := strings.TrimSpace(category); c != "" {
			s.defaultCategory = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open loads the collection from p
func Open(p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister:       p,
		now:             time.Now,
		newID:           uuid.NewString,
		defaultCategory: DefaultCategory,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := p.LoadTasks()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	s.tasks = loaded
	s.log.Debug("task store opened", "count", len(loaded))
	return s, nil
}

// DefaultCategory returns the category applied when none is given
func (s *Store) DefaultCategory() string {
	return s.defaultCategory
}

// All returns a snapshot of the collection in insertion order
func (s *Store) All() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.tasks)
}

// Get returns the task with the given id
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return clone(s.tasks[i]), true
}

// Resolve finds a task by full id or by a unique case-insensitive id prefix
func (s *Store) Resolve(ref string) (models.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return models.Task{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if strings.EqualFold(t.ID, ref) {
			return clone(t), nil
		}
	}

	match := -1
	for i, t := range s.tasks {
		if !strings.HasPrefix(strings.ToLower(t.ID), ref) {
			continue
		}
		if match >= 0 {
			return models.Task{}, fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
		}
		match = i
	}
	if match < 0 {
		return models.Task{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return clone(s.tasks[match]), nil
}

// Create appends a new task with a fresh id and timestamps
func (s *Store) Create(in NewTask) (models.Task, error) {
	in = in.normalize(s.defaultCategory)
	if err := in.validate(); err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for attempt := 1; s.indexOf(id) >= 0; attempt++ {
		if attempt == maxIDAttempts {
			return models.Task{}, fmt.Errorf("generate task id: %q already in use", id)
		}
		id = s.newID()
	}

	now := s.now().UTC()
	task := models.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
		Category:    in.Category,
		DueDate:     cloneTime(in.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := append(cloneAll(s.tasks), task)
	if err := s.commit(next); err != nil {
		return models.Task{}, err
	}
	s.log.Debug("task created", "id", task.ID, "priority", task.Priority, "category", task.Category)
	return clone(task), nil
}

// Update applies patch to the task with the given id
func (s *Store) Update(id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(id, patch)
}

// ToggleComplete flips the completion flag of the task with the given id
func (s *Store) ToggleComplete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	completed := !s.tasks[i].Completed
	return s.update(id, Patch{Completed: &completed})
}

// Delete removes the task with the given id
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}

	next := make([]models.Task, 0, len(s.tasks)-1)
	next = append(next, cloneAll(s.tasks[:i])...)
	next = append(next, cloneAll(s.tasks[i+1:])...)

	if err := s.commit(next); err != nil {
		return err
	}
	s.log.Debug("task deleted", "id", id)
	return nil
}

func (s *Store) update(id string, patch Patch) error {
	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("update of unknown task ignored", "id", id)
		return nil
	}

	next := cloneAll(s.tasks)
	updated := patch.apply(next[i])
	if updated.Category == "" {
		updated.Category = s.defaultCategory
	}
	if err := fieldsOf(updated).validate(); err != nil {
		return err
	}
	updated.UpdatedAt = s.advance(next[i].UpdatedAt)
	next[i] = updated

	if err := s.commit(next); err != nil {
		return err
	}
	s.log.Debug("task updated", "id", id)
	return nil
}

func (s *Store) commit(next []models.Task) error {
	if err := s.persister.SaveTasks(next); err != nil {
		s.log.Error("persist tasks", "error", err)
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.tasks = next
	return nil
}

// advance returns the current time, bumped past prev when the clock has not moved
func (s *Store) advance(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(t models.Task) models.Task {
	t.DueDate = cloneTime(t.DueDate)
	return t
}

func cloneAll(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = clone(t)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
