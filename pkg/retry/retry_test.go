package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier(attempts int) *Retrier {
	return New(
		WithMaxAttempts(attempts),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(5*time.Millisecond),
		WithJitter(0),
	)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	var calls atomic.Int64
	transient := errors.New("connection reset")

	err := fastRetrier(5).Do(context.Background(), func(context.Context) error {
		if calls.Add(1) < 3 {
			return Retryable(transient)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load())
}

func TestDo_PermanentErrorStopsAndUnwraps(t *testing.T) {
	var calls atomic.Int64
	cause := errors.New("not found")

	err := fastRetrier(5).Do(context.Background(), func(context.Context) error {
		calls.Add(1)
		return Permanent(cause)
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestDo_UnmarkedErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int64
	cause := errors.New("some error")

	err := fastRetrier(5).Do(context.Background(), func(context.Context) error {
		calls.Add(1)
		return cause
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestDo_ExhaustionReturnsUnwrappedError(t *testing.T) {
	var calls atomic.Int64
	cause := errors.New("still broken")

	err := fastRetrier(3).Do(context.Background(), func(context.Context) error {
		calls.Add(1)
		return Retryable(cause)
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, int64(3), calls.Load())
}

func TestDo_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cause := errors.New("transient")

	err := fastRetrier(10).Do(ctx, func(context.Context) error {
		cancel()
		return Retryable(cause)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestDo_RetryIfOverridesMarkers(t *testing.T) {
	var calls atomic.Int64
	cause := errors.New("deadlock detected")

	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
		WithRetryIf(func(err error) bool {
			return err.Error() == "deadlock detected"
		}),
	)

	err := r.Do(context.Background(), func(context.Context) error {
		if calls.Add(1) == 1 {
			return cause
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestDo_OnRetryCallback(t *testing.T) {
	var retries atomic.Int64

	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
		WithOnRetry(func(int, error, time.Duration) {
			retries.Add(1)
		}),
	)

	_ = r.Do(context.Background(), func(context.Context) error {
		return Retryable(errors.New("transient"))
	})

	// 3 attempts means 2 sleeps between them.
	assert.Equal(t, int64(2), retries.Load())
}

func TestMarkers(t *testing.T) {
	cause := errors.New("cause")

	assert.True(t, IsRetryable(Retryable(cause)))
	assert.True(t, IsPermanent(Permanent(cause)))
	assert.False(t, IsRetryable(cause))
	assert.False(t, IsPermanent(cause))
	assert.ErrorIs(t, Retryable(cause), cause)
	assert.ErrorIs(t, Permanent(cause), cause)
	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
}
