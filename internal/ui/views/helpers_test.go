package views

import (
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/tasks"
)

type memoryPersister struct {
	saved []models.Task
}

func (m *memoryPersister) LoadTasks() ([]models.Task, error) { return m.saved, nil }

func (m *memoryPersister) SaveTasks(ts []models.Task) error {
	m.saved = append([]models.Task(nil), ts...)
	return nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// typeText sends each rune as its own key press
func typeText(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, keyRunes(string(r)))
	}
	return msgs
}

// press feeds msgs to m and runs the resulting commands. Results the view
// produces for itself are fed back; everything else is returned.
func press(m tea.Model, msgs ...tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		out = append(out, settle(m, cmd)...)
	}
	return out
}

func settle(m tea.Model, cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, settle(m, c)...)
		}
		return out
	case tasksLoadedMsg, authResultMsg:
		_, next := m.Update(msg)
		return append([]tea.Msg{msg}, settle(m, next)...)
	default:
		return []tea.Msg{msg}
	}
}

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)

func localDay(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	return &t
}

func newTestStore(t *testing.T) *tasks.Store {
	t.Helper()
	n := 0
	s, err := tasks.Open(&memoryPersister{},
		tasks.WithClock(func() time.Time { return testNow }),
		tasks.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("task-%02d", n)
		}),
	)
	require.NoError(t, err)
	return s
}

func newTestTaskView(t *testing.T, store *tasks.Store) *TaskListView {
	t.Helper()
	v := NewTaskListView(store, models.User{ID: "u1", Name: "marie", Email: "marie@example.com"}, TaskViewOptions{
		Categories: []string{"Personnel", "Travail", "Santé", "Loisirs"},
		Now:        func() time.Time { return testNow },
	})
	steadyCursors(&v.searchInput.Cursor, &v.editTitle.Cursor, &v.editDesc.Cursor, &v.editDue.Cursor)
	press(v, tea.WindowSizeMsg{Width: 100, Height: 60})
	settle(v, v.Init())
	return v
}

// steadyCursors stops cursor blinking, whose commands wait on a timer
func steadyCursors(cs ...*cursor.Model) {
	for _, c := range cs {
		c.SetMode(cursor.CursorStatic)
	}
}
