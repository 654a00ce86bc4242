package query

import (
	"context"
	"errors"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TASKS / GET HISTORY QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// TaskDTO is one active task view.
type TaskDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryRecordDTO is one archived task view.
type HistoryRecordDTO struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	Date        time.Time  `json:"date"`
	IsDone      bool       `json:"is_done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// GetTasksHandler returns a user's active tasks and archived history.
type GetTasksHandler struct {
	tasks   task.Repository
	history task.HistoryRepository
}

// NewGetTasksHandler creates the handler.
func NewGetTasksHandler(tasks task.Repository, history task.HistoryRepository) *GetTasksHandler {
	return &GetTasksHandler{tasks: tasks, history: history}
}

// Active returns the user's active tasks.
func (h *GetTasksHandler) Active(ctx context.Context, userID string) ([]TaskDTO, error) {
	if userID == "" {
		return nil, shared.WrapError("query", "GetTasks", shared.ErrValidation,
			"invalid query", errors.New("user_id is required"))
	}

	tasks, err := h.tasks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, TaskDTO{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Category:    t.Category,
			Priority:    string(t.Priority),
			IsDone:      t.IsDone,
			CreatedAt:   t.CreatedAt,
		})
	}
	return dtos, nil
}

// History returns the user's most recent archived records.
func (h *GetTasksHandler) History(ctx context.Context, userID string, limit int) ([]HistoryRecordDTO, error) {
	if userID == "" {
		return nil, shared.WrapError("query", "GetHistory", shared.ErrValidation,
			"invalid query", errors.New("user_id is required"))
	}

	records, err := h.history.ListByOwner(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]HistoryRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, HistoryRecordDTO{
			ID:          rec.ID,
			TaskID:      rec.TaskID,
			Title:       rec.Title,
			Date:        rec.Date,
			IsDone:      rec.IsDone,
			CompletedAt: rec.CompletedAt,
		})
	}
	return dtos, nil
}
