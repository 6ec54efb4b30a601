// Package todo stores, validates, and queries kanban tasks.
package todo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the accepted due date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// DefaultCategory is used when a task is saved with a blank category.
const DefaultCategory = "General"

// noDueDate sorts tasks without a due date after every dated task.
const noDueDate = "9999-12-31"

// Status represents a task status (its board column).
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

var statusOrder = []Status{StatusTodo, StatusDoing, StatusDone}

// Statuses returns all statuses in column order.
func Statuses() []Status {
	return slices.Clone(statusOrder)
}

// Valid reports whether s is one of the three board columns.
func (s Status) Valid() bool {
	return slices.Contains(statusOrder, s)
}

// Rank returns the column position of s. Unknown statuses rank last.
func (s Status) Rank() int {
	if i := slices.Index(statusOrder, s); i >= 0 {
		return i
	}
	return len(statusOrder)
}

// Label returns the column heading for s.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusDoing:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Step returns the neighbouring status in direction d and whether it exists.
func (s Status) Step(d Direction) (Status, bool) {
	i := slices.Index(statusOrder, s)
	if i < 0 {
		return s, false
	}
	j := i + int(d)
	if j < 0 || j >= len(statusOrder) {
		return s, false
	}
	return statusOrder[j], true
}

// ParseStatus parses a status name, ignoring case and surrounding space.
func ParseStatus(input string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(input)))
	if !s.Valid() {
		return "", fmt.Errorf("%w %q, must be one of: todo, doing, done", ErrInvalidStatus, input)
	}
	return s, nil
}

// Priority ranks a task: 1 is high, 3 is low.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Valid reports whether p is within 1..3.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Label returns a human-readable priority name.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return fmt.Sprintf("P%d", int(p))
	}
}

// Direction moves a task between adjacent columns.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Task represents a single card on the board.
type Task struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	DueDate  string   `json:"due_date"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
	Note     string   `json:"note"`
}

// Done reports whether the task sits in the done column.
func (t Task) Done() bool {
	return t.Status == StatusDone
}

// Overdue reports whether the task is past due as of now.
func (t Task) Overdue(now time.Time) bool {
	return IsOverdueAt(t.DueDate, t.Done(), now)
}

// Draft holds user-entered task fields for add and edit.
type Draft struct {
	Title    string
	Category string
	DueDate  string
	Priority Priority
	Status   Status
	Note     string
}

// DraftFrom returns a draft pre-filled from t, for editing.
func DraftFrom(t Task) Draft {
	return Draft{
		Title:    t.Title,
		Category: t.Category,
		DueDate:  t.DueDate,
		Priority: t.Priority,
		Status:   t.Status,
		Note:     t.Note,
	}
}

// Normalize trims the draft, fills defaults, and validates it.
func (d Draft) Normalize() (Draft, error) {
	return d.normalize(DefaultCategory)
}

func (d Draft) normalize(defaultCategory string) (Draft, error) {
	out := Draft{
		Title:    strings.TrimSpace(d.Title),
		Category: strings.TrimSpace(d.Category),
		DueDate:  strings.TrimSpace(d.DueDate),
		Priority: d.Priority,
		Status:   d.Status,
		Note:     strings.TrimSpace(d.Note),
	}

	if out.Title == "" {
		return Draft{}, &ValidationError{Path: "title", Err: ErrEmptyTitle}
	}
	if out.Category == "" {
		out.Category = defaultCategory
	}
	if out.DueDate != "" {
		if _, err := time.Parse(DateLayout, out.DueDate); err != nil {
			return Draft{}, &ValidationError{Path: "due_date", Err: fmt.Errorf("%w: %q", ErrInvalidDueDate, out.DueDate)}
		}
	}
	if out.Priority == 0 {
		out.Priority = PriorityMedium
	}
	if !out.Priority.Valid() {
		return Draft{}, &ValidationError{Path: "priority", Err: fmt.Errorf("%w, got %d", ErrInvalidPriority, out.Priority)}
	}
	if out.Status == "" {
		out.Status = StatusTodo
	}
	if !out.Status.Valid() {
		return Draft{}, &ValidationError{Path: "status", Err: fmt.Errorf("%w %q", ErrInvalidStatus, out.Status)}
	}

	return out, nil
}

func (t *Task) apply(d Draft) {
	t.Title = d.Title
	t.Category = d.Category
	t.DueDate = d.DueDate
	t.Priority = d.Priority
	t.Status = d.Status
	t.Note = d.Note
}

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrInvalidDueDate  = errors.New("invalid due date, use YYYY-MM-DD")
	ErrInvalidPriority = errors.New("priority must be 1, 2 or 3")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrNoFile          = errors.New("task file does not exist")
	ErrLocked          = errors.New("task file is locked by another process")
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // field or JSON path of the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
