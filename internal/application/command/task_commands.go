package command

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/storage"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
	"github.com/tasktrek-hub/tasktrek/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK COMMANDS
// Create, edit, and toggle active tasks. Toggling is the only path into the
// gamification pipeline: +1 completion feeds a positive points delta, -1 a
// negative one.
// ══════════════════════════════════════════════════════════════════════════════

// CreateTaskCommand contains the data to create a task.
type CreateTaskCommand struct {
	OwnerID     string
	Title       string
	Description string
	Category    string
	Priority    task.Priority
}

// EditTaskCommand updates a task's descriptive fields.
type EditTaskCommand struct {
	TaskID      string
	Title       string
	Description string
	Category    string
	Priority    task.Priority
}

// ToggleTaskCommand flips a task's completion flag.
type ToggleTaskCommand struct {
	TaskID string
	Done   bool
}

// ToggleTaskResult combines the task state with the pipeline outcome.
type ToggleTaskResult struct {
	Task *task.Task

	// Completion is nil when the toggle was a no-op (flag unchanged).
	Completion *ApplyTaskCompletionResult
}

// TaskHandler handles task write commands.
type TaskHandler struct {
	repos      storage.Repos
	completion *ApplyTaskCompletionHandler
	log        *logger.Logger
}

// NewTaskHandler creates the handler. The repository set is pool-scoped; the
// completion handler owns its own transaction.
func NewTaskHandler(repos storage.Repos, completion *ApplyTaskCompletionHandler, log *logger.Logger) *TaskHandler {
	if log == nil {
		log = logger.Default()
	}
	return &TaskHandler{
		repos:      repos,
		completion: completion,
		log:        log.With(logger.Component("task_commands")),
	}
}

// Create creates a new active task.
func (h *TaskHandler) Create(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	t, err := task.NewTask(task.NewTaskParams{
		ID:          uuid.NewString(),
		OwnerID:     cmd.OwnerID,
		Title:       cmd.Title,
		Description: cmd.Description,
		Category:    cmd.Category,
		Priority:    cmd.Priority,
	})
	if err != nil {
		return nil, err
	}

	if err := h.repos.Tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	h.log.Debug("task created",
		logger.TaskID(t.ID),
		logger.UserID(t.OwnerID),
	)
	return t, nil
}

// Edit updates a task's descriptive fields.
func (h *TaskHandler) Edit(ctx context.Context, cmd EditTaskCommand) (*task.Task, error) {
	if cmd.TaskID == "" {
		return nil, shared.WrapError("command", "EditTask", shared.ErrValidation,
			"invalid command", errors.New("task_id is required"))
	}

	t, err := h.repos.Tasks.GetByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	if err := t.Edit(cmd.Title, cmd.Description, cmd.Category, cmd.Priority); err != nil {
		return nil, err
	}

	if err := h.repos.Tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Toggle flips the completion flag and, when it actually changed, runs the
// gamification pipeline with the corresponding points delta.
func (h *TaskHandler) Toggle(ctx context.Context, cmd ToggleTaskCommand) (*ToggleTaskResult, error) {
	if cmd.TaskID == "" {
		return nil, shared.WrapError("command", "ToggleTask", shared.ErrValidation,
			"invalid command", errors.New("task_id is required"))
	}

	t, err := h.repos.Tasks.GetByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	delta := t.SetDone(cmd.Done)
	if delta == 0 {
		return &ToggleTaskResult{Task: t}, nil
	}

	if err := h.repos.Tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	completion, err := h.completion.Handle(ctx, ApplyTaskCompletionCommand{
		UserID: t.OwnerID,
		Delta:  delta * PointsPerTaskCompletion,
		Reason: "task_toggle",
	})
	if err != nil {
		return nil, err
	}

	return &ToggleTaskResult{Task: t, Completion: completion}, nil
}
