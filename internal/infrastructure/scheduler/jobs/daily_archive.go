// Package jobs contains the scheduled job implementations. The only
// production job is the daily archive, which runs the reset pass over all
// users at local midnight.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/storage"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
	"github.com/tasktrek-hub/tasktrek/pkg/circuitbreaker"
	"github.com/tasktrek-hub/tasktrek/pkg/retry"
	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARCHIVE STATS
// ══════════════════════════════════════════════════════════════════════════════

// UserFailure records one user whose archive pass failed after retries.
type UserFailure struct {
	UserID string
	Err    error
}

// ArchiveStats summarizes one archive run.
type ArchiveStats struct {
	Boundary       time.Time
	StartedAt      time.Time
	Duration       time.Duration
	UsersProcessed int
	UsersSucceeded int
	UsersSkipped   int
	UsersFailed    int
	TasksArchived  int
	Failures       []UserFailure
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY ARCHIVE JOB
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the archive job's tuning knobs.
type Config struct {
	// Concurrency is the number of users archived in parallel.
	Concurrency int

	// UserTimeout bounds one user's archive transaction.
	UserTimeout time.Duration

	// RetryAttempts bounds per-user retries on transient storage errors.
	RetryAttempts int

	// FailureThreshold is the consecutive-failure count that trips the
	// storage circuit breaker and fails the remaining batch fast.
	FailureThreshold int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:      4,
		UserTimeout:      15 * time.Second,
		RetryAttempts:    3,
		FailureThreshold: 10,
	}
}

// DailyArchiveJob performs the daily reset for every user: snapshot active
// tasks into history, clear them, replace the quest set, all inside one
// transaction per user. A failure for one user never aborts the batch.
type DailyArchiveJob struct {
	uow       storage.UnitOfWork
	users     user.Repository
	generator *quest.Generator
	clock     *timeutil.Clock
	publisher shared.EventPublisher
	logger    *slog.Logger

	config  Config
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker

	mu        sync.Mutex
	lastStats *ArchiveStats
}

// NewDailyArchiveJob wires the archive job. Publisher may be nil.
func NewDailyArchiveJob(
	uow storage.UnitOfWork,
	users user.Repository,
	generator *quest.Generator,
	clock *timeutil.Clock,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	config Config,
) *DailyArchiveJob {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConfig().Concurrency
	}
	if config.UserTimeout <= 0 {
		config.UserTimeout = DefaultConfig().UserTimeout
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = DefaultConfig().RetryAttempts
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultConfig().FailureThreshold
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             "archive-storage",
		FailureThreshold: config.FailureThreshold,
		Timeout:          30 * time.Second,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &DailyArchiveJob{
		uow:       uow,
		users:     users,
		generator: generator,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
		config:    config,
		retrier:   retry.StorageRetrier(config.RetryAttempts),
		breaker:   breaker,
	}
}

// Name implements scheduler.Job.
func (j *DailyArchiveJob) Name() string { return "daily_archive" }

// Description implements scheduler.Job.
func (j *DailyArchiveJob) Description() string {
	return "archives active tasks into history and regenerates daily quests for all users"
}

// LastStats returns the stats of the most recent run, or nil before the first.
func (j *DailyArchiveJob) LastStats() *ArchiveStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastStats
}

// Run implements scheduler.Job. Cancellation is honored at the per-user
// boundary: users already dispatched finish their transaction, users not yet
// dispatched are skipped.
func (j *DailyArchiveJob) Run(ctx context.Context) error {
	now := j.clock.Now()
	boundary := j.clock.ResetBoundary(now)

	ids, err := j.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	j.logger.Info("archive run started",
		"boundary", j.clock.FormatDay(boundary),
		"users", len(ids),
		"concurrency", j.config.Concurrency,
	)

	stats := &ArchiveStats{
		Boundary:  boundary,
		StartedAt: now,
	}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, j.config.Concurrency)
		mu  sync.Mutex
	)

dispatch:
	for _, id := range ids {
		// Cancellation is honored strictly between users.
		if ctx.Err() != nil {
			j.logger.Warn("archive run cancelled, remaining users skipped",
				"remaining", len(ids)-stats.UsersProcessed,
			)
			break dispatch
		}

		select {
		case <-ctx.Done():
			j.logger.Warn("archive run cancelled, remaining users skipped",
				"remaining", len(ids)-stats.UsersProcessed,
			)
			break dispatch
		case sem <- struct{}{}:
		}

		stats.UsersProcessed++
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			defer func() { <-sem }()

			archived, skipped, err := j.archiveUser(ctx, userID, boundary)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.UsersFailed++
				stats.Failures = append(stats.Failures, UserFailure{UserID: userID, Err: err})
				j.logger.Error("user archive failed",
					"user_id", userID,
					"error", err,
				)
			case skipped:
				stats.UsersSkipped++
				stats.UsersSucceeded++
			default:
				stats.UsersSucceeded++
				stats.TasksArchived += archived
			}
		}(id)
	}

	wg.Wait()
	stats.Duration = time.Since(now)

	j.mu.Lock()
	j.lastStats = stats
	j.mu.Unlock()

	j.logger.Info("archive run completed",
		"boundary", j.clock.FormatDay(boundary),
		"processed", stats.UsersProcessed,
		"succeeded", stats.UsersSucceeded,
		"skipped", stats.UsersSkipped,
		"failed", stats.UsersFailed,
		"tasks_archived", stats.TasksArchived,
		"duration", stats.Duration.String(),
	)

	if err := j.publisher.Publish(shared.NewArchiveCompletedEvent(
		boundary, stats.UsersProcessed, stats.UsersSucceeded, stats.UsersFailed,
	)); err != nil {
		j.logger.Warn("archive event publish failed", "error", err)
	}

	if stats.UsersFailed > 0 {
		return fmt.Errorf("archive completed with %d failed users", stats.UsersFailed)
	}
	return nil
}

// RunDailyReset executes one archive pass and returns its stats. This is the
// programmatic entry point for manual resets; the scheduler calls Run.
func (j *DailyArchiveJob) RunDailyReset(ctx context.Context) (*ArchiveStats, error) {
	err := j.Run(ctx)
	return j.LastStats(), err
}

// errAlreadyArchived marks a user already reset under the current boundary.
var errAlreadyArchived = errors.New("user already archived for this boundary")

// archiveUser runs one user's pass through breaker and retrier. It returns
// the number of tasks archived and whether the user was already reset. A
// started user always finishes: the work context is detached from run
// cancellation and bounded by UserTimeout only.
func (j *DailyArchiveJob) archiveUser(ctx context.Context, userID string, boundary time.Time) (int, bool, error) {
	workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.config.UserTimeout)
	defer cancel()

	var (
		archived int
		skipped  bool
	)
	err := j.breaker.Execute(workCtx, func(ctx context.Context) error {
		return j.retrier.Do(ctx, func(ctx context.Context) error {
			n, err := j.archiveUserTx(ctx, userID, boundary)
			if errors.Is(err, errAlreadyArchived) {
				skipped = true
				return nil
			}
			if err != nil {
				if shared.IsRetryable(err) {
					return retry.Retryable(err)
				}
				return retry.Permanent(err)
			}
			archived = n
			return nil
		})
	})
	return archived, skipped, err
}

// archiveUserTx is the transactional body of one user's pass.
func (j *DailyArchiveJob) archiveUserTx(ctx context.Context, userID string, boundary time.Time) (int, error) {
	var archived int

	err := j.uow.Do(ctx, func(r storage.Repos) error {
		tasks, err := r.Tasks.ListByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}

		quests, err := r.Quests.ListByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("list quests: %w", err)
		}

		// Idempotence: no active tasks plus a quest generated at or after
		// the boundary means this user was already reset.
		if len(tasks) == 0 && hasQuestSince(quests, boundary) {
			return errAlreadyArchived
		}

		now := j.clock.Now()

		if len(tasks) > 0 {
			records := make([]task.HistoryRecord, 0, len(tasks))
			for _, t := range tasks {
				records = append(records, t.Snapshot(uuid.NewString(), boundary, now))
			}
			if err := r.TaskHistory.CreateBatch(ctx, records); err != nil {
				return fmt.Errorf("snapshot tasks: %w", err)
			}

			if _, err := r.Tasks.DeleteByOwner(ctx, userID); err != nil {
				return fmt.Errorf("clear tasks: %w", err)
			}
			archived = len(records)
		}

		if err := r.Quests.DeleteByOwner(ctx, userID); err != nil {
			return fmt.Errorf("clear quests: %w", err)
		}

		q, err := j.generator.Generate(uuid.NewString(), userID, now)
		if err != nil {
			return fmt.Errorf("generate quest: %w", err)
		}
		if err := r.Quests.Create(ctx, q); err != nil {
			return fmt.Errorf("create quest: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	return archived, nil
}

// hasQuestSince reports whether any quest was created at or after the boundary.
func hasQuestSince(quests []*quest.DailyQuest, boundary time.Time) bool {
	for _, q := range quests {
		if !q.CreatedAt.Before(boundary) {
			return true
		}
	}
	return false
}
