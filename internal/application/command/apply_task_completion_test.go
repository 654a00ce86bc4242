package command

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/persistence/memory"
	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

type fixture struct {
	store   *memory.Store
	handler *ApplyTaskCompletionHandler
	userID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()

	ctx := context.Background()
	repos := store.Repos()

	u, err := user.NewUser(uuid.NewString(), "alice", "hash")
	require.NoError(t, err)
	require.NoError(t, repos.Users.Create(ctx, u))
	require.NoError(t, repos.Profiles.Create(ctx, gamification.NewProfile(u.ID)))

	handler := NewApplyTaskCompletionHandler(store, nil, nil, timeutil.NewClock(time.UTC), nil)

	return &fixture{store: store, handler: handler, userID: u.ID}
}

func (f *fixture) addTask(t *testing.T, done bool) *task.Task {
	t.Helper()
	tk, err := task.NewTask(task.NewTaskParams{
		ID:      uuid.NewString(),
		OwnerID: f.userID,
		Title:   "a task",
	})
	require.NoError(t, err)
	tk.SetDone(done)
	require.NoError(t, f.store.Repos().Tasks.Create(context.Background(), tk))
	return tk
}

func (f *fixture) addQuest(t *testing.T, kind quest.Kind, target, reward int) *quest.DailyQuest {
	t.Helper()
	q := &quest.DailyQuest{
		ID:           uuid.NewString(),
		OwnerID:      f.userID,
		Kind:         kind,
		Title:        "test quest",
		Target:       target,
		PointsReward: reward,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.store.Repos().Quests.Create(context.Background(), q))
	return q
}

func (f *fixture) setPoints(t *testing.T, points int) {
	t.Helper()
	ctx := context.Background()
	repos := f.store.Repos()
	p, err := repos.Profiles.GetByUserID(ctx, f.userID)
	require.NoError(t, err)
	p.Points = gamification.Points(points)
	p.Level = gamification.CalculateLevel(p.Points)
	require.NoError(t, repos.Profiles.Save(ctx, p))
}

func TestHandle_FirstCompletion(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, true)

	res, err := f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{
		UserID: f.userID,
		Delta:  PointsPerTaskCompletion,
		Reason: "task_toggle",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Points)
	assert.Equal(t, 1, res.Level)
	assert.False(t, res.LeveledUp)
	assert.Contains(t, res.NewBadges, "first-task")
	assert.Equal(t, 1, res.StreakCount)

	// The profile was persisted, including the badge union.
	p, err := f.store.Repos().Profiles.GetByUserID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, gamification.Points(10), p.Points)
	assert.True(t, p.HasBadge("first-task"))
}

func TestHandle_LevelUpAndQuestRewardExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.setPoints(t, 95)
	f.addTask(t, true)
	q := f.addQuest(t, quest.KindCompleteTasks, 1, 30)

	res, err := f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{
		UserID: f.userID,
		Delta:  PointsPerTaskCompletion,
	})
	require.NoError(t, err)

	// 95 + 10 crosses the level boundary, then the quest reward lands on top.
	assert.Equal(t, 135, res.Points)
	assert.Equal(t, 2, res.Level)
	assert.True(t, res.LeveledUp)
	require.Len(t, res.CompletedQuests, 1)
	assert.Equal(t, q.ID, res.CompletedQuests[0].QuestID)

	// A second pass sees the quest already completed and never re-grants.
	f.addTask(t, true)
	res2, err := f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{
		UserID: f.userID,
		Delta:  PointsPerTaskCompletion,
	})
	require.NoError(t, err)

	assert.Equal(t, 145, res2.Points)
	assert.Empty(t, res2.CompletedQuests)
}

func TestHandle_UncompletionClampsAtZero(t *testing.T) {
	f := newFixture(t)
	f.setPoints(t, 5)

	res, err := f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{
		UserID: f.userID,
		Delta:  -PointsPerTaskCompletion,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Points)
	assert.Equal(t, 1, res.Level)
	assert.False(t, res.LeveledUp)
}

func TestHandle_RetriesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, true)

	var failures atomic.Int64
	f.store.Hooks.BeforeProfileSave = func(*gamification.Profile) error {
		if failures.Add(1) == 1 {
			return shared.ErrConcurrentModification
		}
		return nil
	}

	res, err := f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{
		UserID: f.userID,
		Delta:  PointsPerTaskCompletion,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Points)
	assert.Equal(t, int64(2), failures.Load())
}

func TestHandle_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{UserID: "", Delta: 10})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{UserID: f.userID, Delta: 0})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestHandle_MissingProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), ApplyTaskCompletionCommand{
		UserID: uuid.NewString(),
		Delta:  10,
	})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}
