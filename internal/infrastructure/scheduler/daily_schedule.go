package scheduler

import (
	"fmt"
	"time"

	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

// DailySchedule fires once per day at local midnight in the configured zone.
// This is the trigger for the daily archive: the first midnight strictly
// after the current time, so registering the job at 23:59 still fires a
// minute later and registering at 00:00:01 waits for the next day.
type DailySchedule struct {
	clock *timeutil.Clock
}

// NewDailySchedule creates a schedule bound to the clock's timezone.
func NewDailySchedule(clock *timeutil.Clock) *DailySchedule {
	if clock == nil {
		clock = timeutil.NewClock(time.UTC)
	}
	return &DailySchedule{clock: clock}
}

// Next returns the first local midnight strictly after t.
func (s *DailySchedule) Next(t time.Time) time.Time {
	return s.clock.NextResetBoundary(t)
}

// String returns a human-readable representation.
func (s *DailySchedule) String() string {
	return fmt.Sprintf("daily at midnight (%s)", s.clock.Location())
}
