// Package task contains the task aggregate: the mutable active task and the
// immutable history record it becomes at the daily reset boundary.
package task

import (
	"strings"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Priority is an optional task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether the priority is one of the known values or empty.
func (p Priority) IsValid() bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: TASK
// ══════════════════════════════════════════════════════════════════════════════

// Task is a user's active task. It is mutable until the daily archiver
// converts it into a TaskHistoryRecord and deletes it; only the archiver may
// destroy a task.
type Task struct {
	// ID is the task's unique identifier (UUID in string form).
	ID string

	// OwnerID is the owning user's ID. A task belongs to exactly one user.
	OwnerID string

	// Title is the short task text. Required.
	Title string

	// Description is optional free text.
	Description string

	// Category is an optional grouping label.
	Category string

	// Priority is an optional priority marker.
	Priority Priority

	// IsDone marks completion. Toggled by the user; points accounting is
	// handled by the caller, once per toggle.
	IsDone bool

	// CreatedAt is the creation time.
	CreatedAt time.Time

	// UpdatedAt is the time of the last mutation.
	UpdatedAt time.Time
}

// NewTaskParams contains parameters for creating a task.
type NewTaskParams struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Category    string
	Priority    Priority
}

// NewTask creates a task with field validation.
func NewTask(params NewTaskParams) (*Task, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("task", "Create", shared.ErrInvalidID, "task id is required")
	}
	if params.OwnerID == "" {
		return nil, shared.NewDomainError("task", "Create", shared.ErrInvalidID, "owner id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, shared.ErrEmptyTaskTitle
	}
	if !params.Priority.IsValid() {
		return nil, shared.NewDomainError("task", "Create", shared.ErrInvalidInput, "invalid priority")
	}

	now := time.Now().UTC()
	return &Task{
		ID:          params.ID,
		OwnerID:     params.OwnerID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Category:    strings.TrimSpace(params.Category),
		Priority:    params.Priority,
		IsDone:      false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetDone toggles the completion flag. It returns the signed completion delta
// the toggle represents: +1 on false→true, -1 on true→false, 0 when the flag
// did not change.
func (t *Task) SetDone(done bool) int {
	if t.IsDone == done {
		return 0
	}
	t.IsDone = done
	t.UpdatedAt = time.Now().UTC()
	if done {
		return 1
	}
	return -1
}

// Edit updates the descriptive fields.
func (t *Task) Edit(title, description, category string, priority Priority) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.ErrEmptyTaskTitle
	}
	if !priority.IsValid() {
		return shared.NewDomainError("task", "Edit", shared.ErrInvalidInput, "invalid priority")
	}

	t.Title = title
	t.Description = strings.TrimSpace(description)
	t.Category = strings.TrimSpace(category)
	t.Priority = priority
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK HISTORY RECORD
// ══════════════════════════════════════════════════════════════════════════════

// HistoryRecord is an immutable snapshot of a task taken at archive time.
// One record exists per archived task per reset cycle; records are never
// mutated after creation.
type HistoryRecord struct {
	// ID is the record's unique identifier.
	ID string

	// OwnerID is the user the task belonged to.
	OwnerID string

	// TaskID is the ID of the archived task.
	TaskID string

	// Copied descriptive fields.
	Title       string
	Description string
	Category    string
	Priority    Priority

	// Date is the reset boundary the record was archived under.
	Date time.Time

	// IsDone is the completion flag at archive time.
	IsDone bool

	// CompletedAt is set iff IsDone, otherwise nil.
	CompletedAt *time.Time

	// ArchivedAt is the wall-clock archive time.
	ArchivedAt time.Time
}

// Snapshot converts a task into its history record for the given reset
// boundary. CompletedAt is set to now iff the task is done. The archiver
// always creates the record before deleting the task, never the reverse.
func (t *Task) Snapshot(recordID string, boundary, now time.Time) HistoryRecord {
	rec := HistoryRecord{
		ID:          recordID,
		OwnerID:     t.OwnerID,
		TaskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Date:        boundary,
		IsDone:      t.IsDone,
		ArchivedAt:  now,
	}
	if t.IsDone {
		completedAt := now
		rec.CompletedAt = &completedAt
	}
	return rec
}
