package models

import (
	"net/url"
	"strings"
	"time"
)

// Task represents a row in the tasks table. DueDate and Cost keep the raw
// form strings; only the analytics layer coerces them to typed values.
type Task struct {
	ID            int64
	UserID        int64
	Title         string
	Category      string
	DueDate       string
	Frequency     string
	Cost          string
	EstimatedTime string
	Guide         string
	VideoURL      string
	Completed     bool
	CreatedAt     time.Time
}

// ValidationError is a user-visible form error. Its message is safe to
// render back to the page.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// TaskForm is the typed payload of the add/edit task form. Every field the
// form can carry is enumerated here; only Title is required.
type TaskForm struct {
	Title         string
	Category      string
	DueDate       string
	Frequency     string
	Cost          string
	EstimatedTime string
	Guide         string
	VideoURL      string
}

// ParseTaskForm builds a TaskForm from posted form values, trimming the
// title. It does not validate; call Validate before persisting.
func ParseTaskForm(form url.Values) TaskForm {
	return TaskForm{
		Title:         strings.TrimSpace(form.Get("title")),
		Category:      form.Get("category"),
		DueDate:       form.Get("due_date"),
		Frequency:     form.Get("frequency"),
		Cost:          form.Get("cost"),
		EstimatedTime: form.Get("estimated_time"),
		Guide:         form.Get("guide"),
		VideoURL:      form.Get("video_url"),
	}
}

// Validate enforces the single required field.
func (f TaskForm) Validate() error {
	if f.Title == "" {
		return &ValidationError{Msg: "Task title cannot be empty."}
	}
	return nil
}

// Apply copies the mutable fields onto a task. Ownership and completion are
// never touched here.
func (f TaskForm) Apply(t *Task) {
	t.Title = f.Title
	t.Category = f.Category
	t.DueDate = f.DueDate
	t.Frequency = f.Frequency
	t.Cost = f.Cost
	t.EstimatedTime = f.EstimatedTime
	t.Guide = f.Guide
	t.VideoURL = f.VideoURL
}
