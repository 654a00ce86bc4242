package task

import (
	"context"
	"time"
)

// Repository persists active tasks.
type Repository interface {
	// Create persists a new task.
	Create(ctx context.Context, t *Task) error

	// GetByID returns a task by ID.
	GetByID(ctx context.Context, id string) (*Task, error)

	// ListByOwner returns all active tasks of a user.
	ListByOwner(ctx context.Context, ownerID string) ([]*Task, error)

	// Update persists task mutations.
	Update(ctx context.Context, t *Task) error

	// CountCompletedByOwner returns the number of active tasks of a user
	// with IsDone set.
	CountCompletedByOwner(ctx context.Context, ownerID string) (int, error)

	// DeleteByOwner removes all active tasks of a user and returns the number
	// removed. Only the archiver calls this, and only after snapshotting.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// HistoryRepository persists immutable task history records.
type HistoryRepository interface {
	// CreateBatch persists the snapshots of one archive pass. Records are
	// insert-only; nothing ever updates them.
	CreateBatch(ctx context.Context, records []HistoryRecord) error

	// ListByOwner returns history records of a user, newest first. A limit
	// of zero or less means no limit.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]HistoryRecord, error)

	// CountCompletedByOwner returns the lifetime number of archived
	// completed tasks of a user.
	CountCompletedByOwner(ctx context.Context, ownerID string) (int, error)

	// ListByOwnerAndDate returns the records archived under a boundary.
	ListByOwnerAndDate(ctx context.Context, ownerID string, date time.Time) ([]HistoryRecord, error)
}
