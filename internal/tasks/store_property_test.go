package tasks

import (
	"testing"
	"time"

	"github.com/tgienger/taskflow/internal/models"
	"pgregory.net/rapid"
)

func drawNewTask(rt *rapid.T, label string) NewTask {
	return NewTask{
		Title:    rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,20}`).Draw(rt, label+"_title"),
		Priority: rapid.SampledFrom(models.ValidPriorities()).Draw(rt, label+"_priority"),
		Category: rapid.SampledFrom([]string{"", "Travail", "Santé", "Loisirs"}).Draw(rt, label+"_category"),
	}
}

// Every created task gets an id no other task has, with matching timestamps.
func TestPropertyCreateAssignsUniqueIDs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, err := Open(&memoryPersister{})
		if err != nil {
			rt.Fatalf("open: %v", err)
		}

		n := rapid.IntRange(1, 30).Draw(rt, "n")
		seen := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			task, err := s.Create(drawNewTask(rt, "task"))
			if err != nil {
				rt.Fatalf("create: %v", err)
			}
			if seen[task.ID] {
				rt.Fatalf("duplicate id %q", task.ID)
			}
			seen[task.ID] = true
			if !task.CreatedAt.Equal(task.UpdatedAt) {
				rt.Fatalf("createdAt %v != updatedAt %v", task.CreatedAt, task.UpdatedAt)
			}
		}
		if got := len(s.All()); got != n {
			rt.Fatalf("collection has %d tasks, want %d", got, n)
		}
	})
}

// Toggling twice restores the completion flag and keeps id and createdAt.
func TestPropertyToggleIsItsOwnInverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		clock, advance := fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		s, err := Open(&memoryPersister{}, WithClock(clock))
		if err != nil {
			rt.Fatalf("open: %v", err)
		}

		in := drawNewTask(rt, "task")
		in.Completed = rapid.Bool().Draw(rt, "completed")
		task, err := s.Create(in)
		if err != nil {
			rt.Fatalf("create: %v", err)
		}

		advance(time.Duration(rapid.IntRange(0, 1000).Draw(rt, "gap1")) * time.Millisecond)
		if err := s.ToggleComplete(task.ID); err != nil {
			rt.Fatalf("toggle: %v", err)
		}
		mid, _ := s.Get(task.ID)
		advance(time.Duration(rapid.IntRange(0, 1000).Draw(rt, "gap2")) * time.Millisecond)
		if err := s.ToggleComplete(task.ID); err != nil {
			rt.Fatalf("toggle: %v", err)
		}
		got, _ := s.Get(task.ID)

		if mid.Completed == task.Completed {
			rt.Fatalf("first toggle did not flip completed")
		}
		if got.Completed != task.Completed {
			rt.Fatalf("completed = %v after two toggles, want %v", got.Completed, task.Completed)
		}
		if got.ID != task.ID || !got.CreatedAt.Equal(task.CreatedAt) {
			rt.Fatalf("identity changed: %+v vs %+v", got, task)
		}
		if !mid.UpdatedAt.After(task.UpdatedAt) || !got.UpdatedAt.After(mid.UpdatedAt) {
			rt.Fatalf("updatedAt did not strictly advance: %v, %v, %v", task.UpdatedAt, mid.UpdatedAt, got.UpdatedAt)
		}
	})
}

// Deleting removes exactly the target; deleting an unknown id changes nothing.
func TestPropertyDelete(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, err := Open(&memoryPersister{})
		if err != nil {
			rt.Fatalf("open: %v", err)
		}
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		for i := 0; i < n; i++ {
			if _, err := s.Create(drawNewTask(rt, "task")); err != nil {
				rt.Fatalf("create: %v", err)
			}
		}

		before := s.All()
		if err := s.Delete("not-a-task"); err != nil {
			rt.Fatalf("delete unknown: %v", err)
		}
		if len(s.All()) != len(before) {
			rt.Fatalf("deleting an unknown id changed the collection")
		}

		target := rapid.SampledFrom(before).Draw(rt, "target")
		if err := s.Delete(target.ID); err != nil {
			rt.Fatalf("delete: %v", err)
		}
		if _, ok := s.Get(target.ID); ok {
			rt.Fatalf("task %q still present after delete", target.ID)
		}
		if len(s.All()) != len(before)-1 {
			rt.Fatalf("collection has %d tasks, want %d", len(s.All()), len(before)-1)
		}
	})
}
