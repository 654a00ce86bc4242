// Package timeutil provides reset-boundary and day arithmetic for TaskTrek.
// The daily archive fires at local midnight in a configurable zone, so all
// day comparisons go through a Clock bound to that zone.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// Clock performs timezone-aware day arithmetic for a fixed location.
type Clock struct {
	loc *time.Location
}

// NewClock creates a Clock for the given location. A nil location falls back
// to UTC.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

// Location returns the clock's location.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the clock's location.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// In converts a time to the clock's location.
func (c *Clock) In(t time.Time) time.Time {
	return t.In(c.loc)
}

// StartOfDay returns local midnight of the day containing t.
func (c *Clock) StartOfDay(t time.Time) time.Time {
	local := c.In(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// ResetBoundary returns the reset boundary in effect at t: the most recent
// local midnight. Tasks archived under this boundary get it as their history
// date.
func (c *Clock) ResetBoundary(t time.Time) time.Time {
	return c.StartOfDay(t)
}

// NextResetBoundary returns the first local midnight strictly after t.
func (c *Clock) NextResetBoundary(t time.Time) time.Time {
	return c.StartOfDay(t).AddDate(0, 0, 1)
}

// IsSameDay checks if two times fall on the same local day.
func (c *Clock) IsSameDay(t1, t2 time.Time) bool {
	a, b := c.In(t1), c.In(t2)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsConsecutiveDay checks if t2 falls on the local day after t1. Used for
// streak maintenance.
func (c *Clock) IsConsecutiveDay(t1, t2 time.Time) bool {
	next := c.In(t1).AddDate(0, 0, 1)
	return c.IsSameDay(next, t2)
}

// DaysBetween returns the absolute number of local-day boundaries between two
// times.
func (c *Clock) DaysBetween(t1, t2 time.Time) int {
	a := c.StartOfDay(t1)
	b := c.StartOfDay(t2)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// FormatDay formats a time as a date string (YYYY-MM-DD) in the clock's zone.
func (c *Clock) FormatDay(t time.Time) string {
	return c.In(t).Format(FormatDate)
}

// ParseDay parses a date string (YYYY-MM-DD) in the clock's zone.
func (c *Clock) ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, c.loc)
}
