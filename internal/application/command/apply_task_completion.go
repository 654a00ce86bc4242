// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/storage"
	"github.com/tasktrek-hub/tasktrek/pkg/logger"
	"github.com/tasktrek-hub/tasktrek/pkg/retry"
	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLY TASK COMPLETION COMMAND
// The single entry point for points accounting. Runs the full gamification
// pipeline: ledger, streak, badges, quest progress, quest rewards, all inside
// one transaction.
// ══════════════════════════════════════════════════════════════════════════════

// PointsPerTaskCompletion is the fixed point value of one completed task.
const PointsPerTaskCompletion = 10

// ApplyTaskCompletionCommand carries one signed points delta for a user. The
// caller emits exactly one command per logical completion or un-completion
// event; the pipeline does not deduplicate.
type ApplyTaskCompletionCommand struct {
	// UserID is the profile owner.
	UserID string

	// Delta is the signed points delta (+10 on completion, -10 on
	// un-completion with the default task value).
	Delta int

	// Reason is a free-form label carried into the points event.
	Reason string
}

// Validate validates the command.
func (c ApplyTaskCompletionCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("apply_task_completion: user_id is required")
	}
	if c.Delta == 0 {
		return errors.New("apply_task_completion: delta cannot be zero")
	}
	return nil
}

// ApplyTaskCompletionResult is the post-pipeline profile state.
type ApplyTaskCompletionResult struct {
	// Points and Level after the delta and any quest rewards.
	Points int
	Level  int

	// LeveledUp is true when the level increased during this pipeline run.
	LeveledUp bool

	// NewBadges lists badges earned in this run, in table order.
	NewBadges []string

	// CompletedQuests lists quests that transitioned to completed in this run.
	CompletedQuests []quest.Reward

	// StreakCount is the streak after the update.
	StreakCount int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ApplyTaskCompletionHandler handles the ApplyTaskCompletionCommand.
type ApplyTaskCompletionHandler struct {
	uow       storage.UnitOfWork
	board     gamification.Leaderboard
	publisher shared.EventPublisher
	clock     *timeutil.Clock
	retrier   *retry.Retrier
	log       *logger.Logger
}

// NewApplyTaskCompletionHandler creates the handler. The leaderboard may be
// nil when the cache is disabled; the publisher may be nil.
func NewApplyTaskCompletionHandler(
	uow storage.UnitOfWork,
	board gamification.Leaderboard,
	publisher shared.EventPublisher,
	clock *timeutil.Clock,
	log *logger.Logger,
) *ApplyTaskCompletionHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if clock == nil {
		clock = timeutil.NewClock(time.UTC)
	}
	if log == nil {
		log = logger.Default()
	}
	return &ApplyTaskCompletionHandler{
		uow:       uow,
		board:     board,
		publisher: publisher,
		clock:     clock,
		retrier:   retry.ProfileWriteRetrier(),
		log:       log.With(logger.Component("apply_task_completion")),
	}
}

// Handle executes the gamification pipeline. On a version conflict the whole
// transaction is retried with a fresh profile read, so concurrent completions
// serialize instead of losing updates.
func (h *ApplyTaskCompletionHandler) Handle(
	ctx context.Context,
	cmd ApplyTaskCompletionCommand,
) (*ApplyTaskCompletionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "ApplyTaskCompletion", shared.ErrValidation, "invalid command", err)
	}

	var (
		result *ApplyTaskCompletionResult
		events []shared.Event
	)

	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		result, events, err = h.runPipeline(ctx, cmd)
		if errors.Is(err, shared.ErrConcurrentModification) {
			return retry.Retryable(err)
		}
		if err != nil {
			return retry.Permanent(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.afterCommit(ctx, cmd.UserID, result, events)
	return result, nil
}

// runPipeline performs one transactional pass.
func (h *ApplyTaskCompletionHandler) runPipeline(
	ctx context.Context,
	cmd ApplyTaskCompletionCommand,
) (*ApplyTaskCompletionResult, []shared.Event, error) {
	var (
		result *ApplyTaskCompletionResult
		events []shared.Event
	)

	err := h.uow.Do(ctx, func(r storage.Repos) error {
		profile, err := r.Profiles.GetByUserID(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if repaired := profile.Normalize(); repaired != "" {
			h.log.Warn("profile self-healed on read",
				logger.UserID(cmd.UserID),
				logger.String("repaired", repaired),
			)
		}

		oldLevel := int(profile.Level)

		ledger, err := gamification.ApplyDelta(profile, cmd.Delta)
		if err != nil {
			return err
		}
		updated := ledger.Profile
		leveledUp := ledger.LeveledUp

		// Positive deltas count as activity for the streak.
		if cmd.Delta > 0 {
			updated.TouchStreak(h.clock.Now())
		}

		counters, err := h.buildCounters(ctx, r, updated)
		if err != nil {
			return err
		}

		newBadges := gamification.EvaluateBadges(updated, counters)
		updated.AddBadges(newBadges...)

		quests, err := r.Quests.ListByOwner(ctx, cmd.UserID)
		if err != nil {
			return err
		}

		tracked, err := quest.UpdateProgress(quests, counters)
		if err != nil {
			return err
		}

		for _, reward := range tracked.RewardsToGrant {
			granted, err := gamification.ApplyDelta(updated, reward.PointsReward)
			if err != nil {
				return err
			}
			updated = granted.Profile
			leveledUp = leveledUp || granted.LeveledUp
		}

		for _, q := range tracked.UpdatedQuests {
			if err := r.Quests.Update(ctx, q); err != nil {
				return err
			}
		}

		if err := r.Profiles.Save(ctx, updated); err != nil {
			return err
		}

		result = &ApplyTaskCompletionResult{
			Points:          int(updated.Points),
			Level:           int(updated.Level),
			LeveledUp:       leveledUp,
			NewBadges:       newBadges,
			CompletedQuests: tracked.RewardsToGrant,
			StreakCount:     updated.StreakCount,
		}

		events = append(events, shared.NewPointsChangedEvent(
			cmd.UserID, cmd.Delta, result.Points, result.Level, cmd.Reason,
		))
		if leveledUp {
			events = append(events, shared.NewLevelUpEvent(cmd.UserID, oldLevel, result.Level, result.Points))
		}
		for _, badge := range newBadges {
			events = append(events, shared.NewBadgeEarnedEvent(cmd.UserID, badge))
		}
		for _, reward := range tracked.RewardsToGrant {
			events = append(events, shared.NewQuestCompletedEvent(
				cmd.UserID, reward.QuestID, string(reward.Kind), reward.PointsReward,
			))
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result, events, nil
}

// buildCounters assembles the live counters from persisted state. Active tasks
// only exist since the last reset, so the active completed count doubles as
// the today counter.
func (h *ApplyTaskCompletionHandler) buildCounters(
	ctx context.Context,
	r storage.Repos,
	profile *gamification.Profile,
) (gamification.Counters, error) {
	activeCompleted, err := r.Tasks.CountCompletedByOwner(ctx, profile.UserID)
	if err != nil {
		return gamification.Counters{}, fmt.Errorf("count active completed: %w", err)
	}

	archivedCompleted, err := r.TaskHistory.CountCompletedByOwner(ctx, profile.UserID)
	if err != nil {
		return gamification.Counters{}, fmt.Errorf("count archived completed: %w", err)
	}

	quests, err := r.Quests.ListByOwner(ctx, profile.UserID)
	if err != nil {
		return gamification.Counters{}, fmt.Errorf("list quests: %w", err)
	}
	questPoints := 0
	for _, q := range quests {
		if q.IsCompleted {
			questPoints += q.PointsReward
		}
	}

	return gamification.Counters{
		TasksCompletedTotal: activeCompleted + archivedCompleted,
		TasksCompletedToday: activeCompleted,
		PointsEarnedToday:   activeCompleted*PointsPerTaskCompletion + questPoints,
		StreakDays:          profile.StreakCount,
		LifetimePoints:      int(profile.Points),
	}, nil
}

// afterCommit performs the best-effort side effects: leaderboard update and
// event publication. Neither can fail the committed pipeline.
func (h *ApplyTaskCompletionHandler) afterCommit(
	ctx context.Context,
	userID string,
	result *ApplyTaskCompletionResult,
	events []shared.Event,
) {
	if h.board != nil {
		if err := h.board.SetScore(ctx, userID, result.Points); err != nil {
			h.log.Warn("leaderboard update failed",
				logger.UserID(userID),
				logger.Err(err),
			)
		}
	}

	for _, event := range events {
		if err := h.publisher.Publish(event); err != nil {
			h.log.Warn("event publish failed",
				logger.String("event_type", string(event.Type())),
				logger.Err(err),
			)
		}
	}
}
