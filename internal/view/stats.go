package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tgienger/taskflow/internal/models"
)

// TabCounts are the badges shown on the status tabs. They always count the
// unfiltered collection.
type TabCounts struct {
	All       int
	Active    int
	Completed int
}

// For returns the badge for a status tab
func (c TabCounts) For(s Status) int {
	switch s {
	case StatusActive:
		return c.Active
	case StatusCompleted:
		return c.Completed
	}
	return c.All
}

// Counts computes tab badges over the full collection
func Counts(tasks []models.Task) TabCounts {
	c := TabCounts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}

// Summary describes the filtered list for its header
type Summary struct {
	Count      int
	Categories []string
}

// Summarize counts the visible tasks under the selected categories
func Summarize(visible []models.Task, f Filter) Summary {
	return Summary{Count: len(visible), Categories: f.Categories}
}

// String renders e.g. "2 tasks in Travail, Santé". It is empty when no
// category is selected.
func (s Summary) String() string {
	if len(s.Categories) == 0 {
		return ""
	}
	noun := "tasks"
	if s.Count == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s in %s", s.Count, noun, strings.Join(s.Categories, ", "))
}

// Metrics are the dashboard aggregates over the full collection
type Metrics struct {
	Total          int `json:"total" yaml:"total"`
	Completed      int `json:"completed" yaml:"completed"`
	Pending        int `json:"pending" yaml:"pending"`
	Overdue        int `json:"overdue" yaml:"overdue"`
	CompletionRate int `json:"completionRate" yaml:"completionRate"`
}

// Dashboard computes the aggregates relative to now
func Dashboard(tasks []models.Task, now time.Time) Metrics {
	m := Metrics{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			m.Completed++
		}
		if t.IsOverdue(now) {
			m.Overdue++
		}
	}
	m.Pending = m.Total - m.Completed
	m.CompletionRate = completionRate(m.Completed, m.Total)
	return m
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
