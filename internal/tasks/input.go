package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tgienger/taskflow/internal/models"
)

var validate = validator.New()

// NewTask holds the caller-supplied fields of a task to create
type NewTask struct {
	Title       string          `validate:"required,max=200"`
	Description string          `validate:"max=1000"`
	Completed   bool
	Priority    models.Priority `validate:"required,oneof=low medium high"`
	Category    string          `validate:"max=50"`
	DueDate     *time.Time
}

// Patch lists the fields to change on an existing task. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *models.Priority
	Category    *string
	DueDate     *time.Time

	// ClearDueDate removes the due date. It wins over DueDate.
	ClearDueDate bool
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.Priority == nil && p.Category == nil && p.DueDate == nil && !p.ClearDueDate
}

func (in NewTask) normalize(defaultCategory string) NewTask {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = defaultCategory
	}
	return in
}

func (in NewTask) validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// fieldsOf extracts the validated fields of an existing task
func fieldsOf(t models.Task) NewTask {
	return NewTask{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
		Category:    t.Category,
		DueDate:     t.DueDate,
	}
}

func (p Patch) apply(t models.Task) models.Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.DueDate != nil {
		t.DueDate = cloneTime(p.DueDate)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	return t
}
