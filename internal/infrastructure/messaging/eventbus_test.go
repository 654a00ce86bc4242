package messaging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

func TestPublish_DeliversToTypedSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	var got []shared.Event
	bus.Subscribe(shared.EventPointsChanged, func(e shared.Event) error {
		got = append(got, e)
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewPointsChangedEvent("u1", 10, 10, 1, "task_toggle")))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("u1", 1, 2, 110)))

	require.Len(t, got, 1)
	assert.Equal(t, shared.EventPointsChanged, got[0].Type())
	assert.Equal(t, "u1", got[0].AggregateID())
}

func TestPublish_SubscribeAllSeesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	var count int
	bus.SubscribeAll(func(shared.Event) error {
		count++
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewBadgeEarnedEvent("u1", "first-task")))
	require.NoError(t, bus.Publish(shared.NewQuestCompletedEvent("u1", "q1", "complete_n_tasks", 30)))

	assert.Equal(t, 2, count)
}

func TestPublish_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	bus.Subscribe(shared.EventBadgeEarned, func(shared.Event) error {
		return errors.New("subscriber broken")
	})

	var delivered bool
	bus.Subscribe(shared.EventBadgeEarned, func(shared.Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewBadgeEarnedEvent("u1", "first-task")))
	assert.True(t, delivered)
}

func TestPublish_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	bus.Subscribe(shared.EventLevelUp, func(shared.Event) error {
		panic("subscriber bug")
	})

	assert.NotPanics(t, func() {
		require.NoError(t, bus.Publish(shared.NewLevelUpEvent("u1", 1, 2, 110)))
	})
}

func TestPublish_AfterClose(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	bus.Close()

	err := bus.Publish(shared.NewBadgeEarnedEvent("u1", "first-task"))
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestPublish_NilEventAndNilHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	bus.Subscribe(shared.EventPointsChanged, nil)
	bus.SubscribeAll(nil)

	assert.NoError(t, bus.Publish(nil))
}
