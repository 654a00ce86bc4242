package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TaskRepository implements task.Repository for PostgreSQL.
type TaskRepository struct {
	q Querier
}

// NewTaskRepository creates a new TaskRepository over a pool or transaction.
func NewTaskRepository(q Querier) *TaskRepository {
	return &TaskRepository{q: q}
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (id, owner_id, title, description, category, priority, is_done, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.Exec(ctx, query,
		t.ID,
		t.OwnerID,
		t.Title,
		t.Description,
		t.Category,
		string(t.Priority),
		t.IsDone,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID returns a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*task.Task, error) {
	query := `
		SELECT id, owner_id, title, description, category, priority, is_done, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	row := r.q.QueryRow(ctx, query, id)
	t, err := scanTask(row)
	if IsNoRows(err) {
		return nil, shared.ErrTaskNotFound
	}
	return t, err
}

// ListByOwner returns all active tasks of a user, oldest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*task.Task, error) {
	query := `
		SELECT id, owner_id, title, description, category, priority, is_done, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Update persists task mutations.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks SET
			title = $1,
			description = $2,
			category = $3,
			priority = $4,
			is_done = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		t.Title,
		t.Description,
		t.Category,
		string(t.Priority),
		t.IsDone,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrTaskNotFound
	}

	return nil
}

// CountCompletedByOwner returns the number of active tasks with is_done set.
func (r *TaskRepository) CountCompletedByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		"SELECT COUNT(*) FROM tasks WHERE owner_id = $1 AND is_done",
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return count, nil
}

// DeleteByOwner removes all active tasks of a user.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.q.Exec(ctx, "DELETE FROM tasks WHERE owner_id = $1", ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task
	var priority string

	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.Category,
		&priority,
		&t.IsDone,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Priority = task.Priority(priority)
	return &t, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK HISTORY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// HistoryRepository implements task.HistoryRepository for PostgreSQL.
// Rows are insert-only; there is no update path.
type HistoryRepository struct {
	q Querier
}

// NewHistoryRepository creates a new HistoryRepository over a pool or transaction.
func NewHistoryRepository(q Querier) *HistoryRepository {
	return &HistoryRepository{q: q}
}

// CreateBatch persists the snapshots of one archive pass in a single round trip.
func (r *HistoryRepository) CreateBatch(ctx context.Context, records []task.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO task_history (
			id, owner_id, task_id, title, description, category, priority,
			date, is_done, completed_at, archived_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ID,
			rec.OwnerID,
			rec.TaskID,
			rec.Title,
			rec.Description,
			rec.Category,
			string(rec.Priority),
			rec.Date,
			rec.IsDone,
			rec.CompletedAt,
			rec.ArchivedAt,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert history record: %w", err)
		}
	}

	return nil
}

// ListByOwner returns history records of a user, newest first. A limit of
// zero or less means no limit.
func (r *HistoryRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]task.HistoryRecord, error) {
	query := `
		SELECT id, owner_id, task_id, title, description, category, priority,
			   date, is_done, completed_at, archived_at
		FROM task_history
		WHERE owner_id = $1
		ORDER BY date DESC, archived_at DESC
		LIMIT NULLIF($2, 0)
	`
	if limit < 0 {
		limit = 0
	}

	rows, err := r.q.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRecords(rows)
}

// CountCompletedByOwner returns the lifetime number of archived completed tasks.
func (r *HistoryRepository) CountCompletedByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		"SELECT COUNT(*) FROM task_history WHERE owner_id = $1 AND is_done",
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed history: %w", err)
	}
	return count, nil
}

// ListByOwnerAndDate returns the records archived under a boundary.
func (r *HistoryRepository) ListByOwnerAndDate(ctx context.Context, ownerID string, date time.Time) ([]task.HistoryRecord, error) {
	query := `
		SELECT id, owner_id, task_id, title, description, category, priority,
			   date, is_done, completed_at, archived_at
		FROM task_history
		WHERE owner_id = $1 AND date = $2
		ORDER BY archived_at
	`

	rows, err := r.q.Query(ctx, query, ownerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list history by date: %w", err)
	}
	defer rows.Close()

	return scanHistoryRecords(rows)
}

func scanHistoryRecords(rows pgx.Rows) ([]task.HistoryRecord, error) {
	var records []task.HistoryRecord
	for rows.Next() {
		var rec task.HistoryRecord
		var priority string

		err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&rec.TaskID,
			&rec.Title,
			&rec.Description,
			&rec.Category,
			&priority,
			&rec.Date,
			&rec.IsDone,
			&rec.CompletedAt,
			&rec.ArchivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}

		rec.Priority = task.Priority(priority)
		records = append(records, rec)
	}

	return records, rows.Err()
}
