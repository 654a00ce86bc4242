package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	name    string
	started chan struct{}
	release chan struct{}
	runs    atomic.Int64
}

func newBlockingJob(name string) *blockingJob {
	return &blockingJob{
		name:    name,
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (j *blockingJob) Name() string        { return j.name }
func (j *blockingJob) Description() string { return "test job" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	j.started <- struct{}{}
	select {
	case <-j.release:
	case <-ctx.Done():
	}
	return nil
}

func TestRegister_Validation(t *testing.T) {
	s := New(Config{})

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Second)), ErrNilJob)
	assert.ErrorIs(t, s.Register(newBlockingJob("a"), nil), ErrNilSchedule)

	require.NoError(t, s.Register(newBlockingJob("a"), NewIntervalSchedule(time.Second)))
	assert.ErrorIs(t, s.Register(newBlockingJob("a"), NewIntervalSchedule(time.Second)), ErrJobAlreadyExists)
}

func TestRunNow_SingleFlight(t *testing.T) {
	s := New(Config{})
	job := newBlockingJob("archive")
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.RunNow(context.Background(), job.name)
		assert.NoError(t, err)
	}()

	<-job.started

	// Second trigger while the first run is in flight must be skipped.
	_, err := s.RunNow(context.Background(), job.name)
	assert.ErrorIs(t, err, ErrJobInFlight)

	close(job.release)
	<-done

	assert.Equal(t, int64(1), job.runs.Load())

	// After the run finishes the job is runnable again.
	result, err := s.RunNow(context.Background(), job.name)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(2), job.runs.Load())
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := New(Config{})
	_, err := s.RunNow(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStartStop_Lifecycle(t *testing.T) {
	s := New(Config{})
	require.NoError(t, s.Register(newBlockingJob("a"), NewIntervalSchedule(time.Hour)))

	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestStop_CancelsInFlightJob(t *testing.T) {
	s := New(Config{})
	job := newBlockingJob("archive")
	// Release never closes; the job only exits via context cancellation.
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))
	require.NoError(t, s.Start(context.Background()))

	s.mu.Lock()
	s.jobs[job.name].nextRun = time.Now().Add(-time.Second)
	s.mu.Unlock()

	<-job.started

	stopped := make(chan struct{})
	go func() {
		_ = s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after cancelling the in-flight job")
	}
}

func TestListJobs_ReportsState(t *testing.T) {
	s := New(Config{})
	require.NoError(t, s.Register(newBlockingJob("a"), NewIntervalSchedule(time.Minute)))

	infos := s.ListJobs()
	require.Len(t, infos, 1)
	assert.Equal(t, "a", infos[0].Name)
	assert.True(t, infos[0].Enabled)
	assert.False(t, infos[0].InFlight)
	assert.False(t, infos[0].NextRun.IsZero())
}

func TestIntervalSchedule_Next(t *testing.T) {
	sched := NewIntervalSchedule(5 * time.Minute)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, at.Add(5*time.Minute), sched.Next(at))
	assert.Equal(t, "every 5m0s", sched.String())
}

func TestIntervalSchedule_MinimumOneSecond(t *testing.T) {
	sched := NewIntervalSchedule(time.Millisecond)
	at := time.Now()
	assert.Equal(t, at.Add(time.Second), sched.Next(at))
}

func TestDailySchedule_NextMidnight(t *testing.T) {
	sched := NewDailySchedule(nil)

	at := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), sched.Next(at))

	atMidnight := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), sched.Next(atMidnight))
}
