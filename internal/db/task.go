package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists the valid statuses in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

// MaxTitleLength is the maximum title length in characters.
const MaxTitleLength = 200

// timeLayout is fixed-width so that lexical ordering of stored timestamps
// matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus converts s (case-insensitive) into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", fmt.Errorf("%w: %s. Must be one of: pending, in_progress, done", ErrInvalidStatus, s)
}

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTaskInput struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty"`
	Status      Status  `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress done"`
}

// UpdateTaskInput carries a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress done"`
}

// Empty reports whether the update carries no fields.
func (u UpdateTaskInput) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

type ListOptions struct {
	Status Status
	Limit  int
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when task input fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a CreateTaskInput or UpdateTaskInput against its tags.
func Validate(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return fmt.Sprintf("must be at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be %s characters or less", fe.Param())
	case "oneof":
		return "must be one of: pending, in_progress, done"
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

type rowScanner interface {
	Scan(dest ...any) error
}

const taskColumns = "id, title, description, status, created_at, updated_at"

func scanTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var description sql.NullString
	var status, createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.Title, &description, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	t.Status = Status(status)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

func scanTasks(rows *sql.Rows) ([]*Task, error) {
	defer rows.Close()
	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// prepareCreate validates input and fills defaults.
func prepareCreate(input CreateTaskInput) (CreateTaskInput, error) {
	if input.Status == "" {
		input.Status = StatusPending
	}
	if err := Validate(input); err != nil {
		return input, err
	}
	return input, nil
}

// applyUpdate merges a validated partial update onto an existing task.
func applyUpdate(existing *Task, input UpdateTaskInput) (*Task, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}
	t := *existing
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	t.UpdatedAt = time.Now().UTC()
	return &t, nil
}

func emptyCounts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	return counts
}
