package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/persistence/memory"
	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

func testJob(t *testing.T, store *memory.Store, cfg Config) *DailyArchiveJob {
	t.Helper()
	return NewDailyArchiveJob(
		store,
		store.Repos().Users,
		quest.NewGenerator(quest.DefaultTemplates(), nil),
		timeutil.NewClock(time.UTC),
		nil,
		nil,
		cfg,
	)
}

func seedUser(t *testing.T, store *memory.Store, username string, tasks int, doneEvery int) string {
	t.Helper()
	ctx := context.Background()
	repos := store.Repos()

	u, err := user.NewUser(uuid.NewString(), username, "hash")
	require.NoError(t, err)
	require.NoError(t, repos.Users.Create(ctx, u))

	for i := 0; i < tasks; i++ {
		tk, err := task.NewTask(task.NewTaskParams{
			ID:      uuid.NewString(),
			OwnerID: u.ID,
			Title:   fmt.Sprintf("task %d", i),
		})
		require.NoError(t, err)
		if doneEvery > 0 && i%doneEvery == 0 {
			tk.SetDone(true)
		}
		require.NoError(t, repos.Tasks.Create(ctx, tk))
	}

	// A quest from the previous cycle.
	q, err := quest.NewGenerator(quest.DefaultTemplates(), nil).
		Generate(uuid.NewString(), u.ID, time.Now().UTC().AddDate(0, 0, -1))
	require.NoError(t, err)
	require.NoError(t, repos.Quests.Create(ctx, q))

	return u.ID
}

func TestRun_ArchivesTasksAndRegeneratesQuest(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(t, store, "alice", 3, 2)
	job := testJob(t, store, Config{Concurrency: 1})

	stats, err := job.RunDailyReset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.UsersProcessed)
	assert.Equal(t, 1, stats.UsersSucceeded)
	assert.Equal(t, 0, stats.UsersFailed)
	assert.Equal(t, 3, stats.TasksArchived)

	ctx := context.Background()
	repos := store.Repos()

	active, err := repos.Tasks.ListByOwner(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, active)

	records, err := repos.TaskHistory.ListByOwner(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, stats.Boundary, rec.Date)
		if rec.IsDone {
			assert.NotNil(t, rec.CompletedAt)
		} else {
			assert.Nil(t, rec.CompletedAt)
		}
	}

	quests, err := repos.Quests.ListByOwner(ctx, userID)
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, 0, quests[0].Progress)
	assert.False(t, quests[0].IsCompleted)
	assert.False(t, quests[0].CreatedAt.Before(stats.Boundary))
}

func TestRun_SecondPassIsNoOp(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(t, store, "alice", 2, 1)
	job := testJob(t, store, Config{Concurrency: 1})

	_, err := job.RunDailyReset(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	firstQuests, err := store.Repos().Quests.ListByOwner(ctx, userID)
	require.NoError(t, err)
	require.Len(t, firstQuests, 1)

	stats, err := job.RunDailyReset(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.UsersSkipped)
	assert.Equal(t, 0, stats.TasksArchived)

	records, err := store.Repos().TaskHistory.ListByOwner(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	secondQuests, err := store.Repos().Quests.ListByOwner(ctx, userID)
	require.NoError(t, err)
	require.Len(t, secondQuests, 1)
	assert.Equal(t, firstQuests[0].ID, secondQuests[0].ID, "skipped user keeps their quest")
}

func TestRun_FailureIsolation(t *testing.T) {
	store := memory.NewStore()
	goodID := seedUser(t, store, "alice", 2, 1)
	badID := seedUser(t, store, "bob", 2, 1)

	store.Hooks.BeforeQuestCreate = func(q *quest.DailyQuest) error {
		if q.OwnerID == badID {
			return errors.New("disk full")
		}
		return nil
	}

	job := testJob(t, store, Config{Concurrency: 1})

	stats, err := job.RunDailyReset(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2, stats.UsersProcessed)
	assert.Equal(t, 1, stats.UsersSucceeded)
	assert.Equal(t, 1, stats.UsersFailed)
	require.Len(t, stats.Failures, 1)
	assert.Equal(t, badID, stats.Failures[0].UserID)

	ctx := context.Background()
	repos := store.Repos()

	goodTasks, err := repos.Tasks.ListByOwner(ctx, goodID)
	require.NoError(t, err)
	assert.Empty(t, goodTasks)

	// The failed user's transaction rolled back: tasks still active,
	// nothing archived.
	badTasks, err := repos.Tasks.ListByOwner(ctx, badID)
	require.NoError(t, err)
	assert.Len(t, badTasks, 2)

	badRecords, err := repos.TaskHistory.ListByOwner(ctx, badID, 0)
	require.NoError(t, err)
	assert.Empty(t, badRecords)
}

func TestRun_RetriesTransientErrors(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "alice", 1, 1)

	var attempts atomic.Int64
	store.Hooks.BeforeTaskList = func(string) error {
		if attempts.Add(1) <= 2 {
			return shared.ErrTransientStorage
		}
		return nil
	}

	job := testJob(t, store, Config{Concurrency: 1, RetryAttempts: 3})

	stats, err := job.RunDailyReset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.UsersSucceeded)
	assert.GreaterOrEqual(t, attempts.Load(), int64(3))
}

func TestRun_CancellationSkipsRemainingUsers(t *testing.T) {
	store := memory.NewStore()
	for i := 0; i < 5; i++ {
		seedUser(t, store, fmt.Sprintf("user%d", i), 1, 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := testJob(t, store, Config{Concurrency: 1})

	stats, err := job.RunDailyReset(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.UsersProcessed)
}

func TestRun_NoUsers(t *testing.T) {
	job := testJob(t, memory.NewStore(), Config{})

	stats, err := job.RunDailyReset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.UsersProcessed)
	assert.Equal(t, 0, stats.UsersFailed)
}
