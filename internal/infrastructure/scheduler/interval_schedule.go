package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule runs a job at fixed intervals. Used by tests and by
// auxiliary maintenance jobs; the archive uses DailySchedule.
type IntervalSchedule struct {
	interval time.Duration
}

// NewIntervalSchedule creates a schedule that fires every interval. Intervals
// below one second are rounded up to one second to match the scheduler tick.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < time.Second {
		interval = time.Second
	}
	return &IntervalSchedule{interval: interval}
}

// Next returns the next run time after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.interval)
}

// String returns a human-readable representation.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("every %s", s.interval)
}
