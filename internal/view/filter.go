// Package view derives what the dashboard shows from the task collection and
// the current filter state. Nothing here mutates its inputs.
package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tgienger/taskflow/internal/models"
)

// Status restricts tasks by completion
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Statuses returns the status tabs in display order
func Statuses() []Status {
	return []Status{StatusAll, StatusActive, StatusCompleted}
}

// ParseStatus converts a user-supplied status name
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAll, "":
		return StatusAll, nil
	case StatusActive:
		return StatusActive, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q (want all, active or completed)", s)
}

// Label returns the tab caption
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusCompleted:
		return "Completed"
	}
	return "All"
}

// Filter is the transient UI state that selects the visible tasks
type Filter struct {
	Status     Status
	Search     string
	Categories []string
}

// Matches reports whether t satisfies the status, search and category
// predicates together
func (f Filter) Matches(t models.Task) bool {
	return f.matchesStatus(t) && f.matchesSearch(t) && f.matchesCategory(t)
}

func (f Filter) matchesStatus(t models.Task) bool {
	switch f.Status {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	}
	return true
}

func (f Filter) matchesSearch(t models.Task) bool {
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

func (f Filter) matchesCategory(t models.Task) bool {
	return len(f.Categories) == 0 || slices.Contains(f.Categories, t.Category)
}

// HasCategory reports whether category is selected
func (f Filter) HasCategory(category string) bool {
	return slices.Contains(f.Categories, category)
}

// ToggleCategory returns a copy of f with category added or removed
func (f Filter) ToggleCategory(category string) Filter {
	out := slices.Clone(f.Categories)
	if i := slices.Index(out, category); i >= 0 {
		out = slices.Delete(out, i, i+1)
	} else {
		out = append(out, category)
	}
	f.Categories = out
	return f
}

// ClearCategories returns a copy of f with no category constraint
func (f Filter) ClearCategories() Filter {
	f.Categories = nil
	return f
}

// NextStatus cycles to the following status tab
func (f Filter) NextStatus() Filter {
	f.Status = cycle(f.Status, 1)
	return f
}

// PrevStatus cycles to the preceding status tab
func (f Filter) PrevStatus() Filter {
	f.Status = cycle(f.Status, -1)
	return f
}

func cycle(s Status, dir int) Status {
	all := Statuses()
	i := max(slices.Index(all, s), 0)
	return all[(i+dir+len(all))%len(all)]
}

// Visible returns the tasks matching f, preserving order
func Visible(tasks []models.Task, f Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the sorted distinct categories across all tasks
func Categories(tasks []models.Task) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		if seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	slices.Sort(out)
	return out
}
