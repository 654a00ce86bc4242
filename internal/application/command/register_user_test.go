package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/persistence/memory"
	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

func newRegisterHandler(store *memory.Store) *RegisterUserHandler {
	return NewRegisterUserHandler(
		store,
		quest.NewGenerator(quest.DefaultTemplates(), nil),
		nil,
		timeutil.NewClock(time.UTC),
		nil,
	)
}

func TestRegisterUser_CreatesUserProfileAndQuest(t *testing.T) {
	store := memory.NewStore()
	h := newRegisterHandler(store)

	res, err := h.Handle(context.Background(), RegisterUserCommand{
		Username: "alice",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Username)

	ctx := context.Background()
	repos := store.Repos()

	u, err := repos.Users.GetByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))

	p, err := repos.Profiles.GetByUserID(ctx, res.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.Points)
	assert.EqualValues(t, 1, p.Level)

	quests, err := repos.Quests.ListByOwner(ctx, res.UserID)
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, res.QuestID, quests[0].ID)
	assert.Equal(t, 0, quests[0].Progress)
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	store := memory.NewStore()
	h := newRegisterHandler(store)

	_, err := h.Handle(context.Background(), RegisterUserCommand{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), RegisterUserCommand{Username: "alice", Password: "correct horse"})
	assert.ErrorIs(t, err, shared.ErrUserAlreadyExists)
}

func TestRegisterUser_RollsBackOnQuestFailure(t *testing.T) {
	store := memory.NewStore()
	store.Hooks.BeforeQuestCreate = func(*quest.DailyQuest) error {
		return errors.New("disk full")
	}
	h := newRegisterHandler(store)

	_, err := h.Handle(context.Background(), RegisterUserCommand{Username: "alice", Password: "correct horse"})
	require.Error(t, err)

	// The whole registration rolled back: no half-created user.
	users, err := store.Repos().Users.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRegisterUser_Validation(t *testing.T) {
	h := newRegisterHandler(memory.NewStore())

	_, err := h.Handle(context.Background(), RegisterUserCommand{Username: "", Password: "correct horse"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), RegisterUserCommand{Username: "alice", Password: "short"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
