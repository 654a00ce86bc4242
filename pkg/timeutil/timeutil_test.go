package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetBoundary_LocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)
	clock := NewClock(loc)

	// 20:30 UTC on March 1 is already March 2 in Almaty (+05:00).
	at := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)

	boundary := clock.ResetBoundary(at)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), boundary)
}

func TestNextResetBoundary_StrictlyAfter(t *testing.T) {
	clock := NewClock(time.UTC)

	midnight := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, midnight.AddDate(0, 0, 1), clock.NextResetBoundary(midnight))
	assert.Equal(t, midnight.AddDate(0, 0, 1), clock.NextResetBoundary(midnight.Add(time.Second)))
	assert.Equal(t, midnight, clock.NextResetBoundary(midnight.Add(-time.Second)))
}

func TestIsSameDay_AcrossZones(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)
	clock := NewClock(loc)

	// 22:00 and 23:00 UTC on March 1 are both March 2 locally.
	a := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)

	assert.True(t, clock.IsSameDay(a, b))
	assert.False(t, clock.IsSameDay(a, a.Add(-4*time.Hour)))
}

func TestIsConsecutiveDay(t *testing.T) {
	clock := NewClock(time.UTC)

	d1 := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	d3 := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	assert.True(t, clock.IsConsecutiveDay(d1, d2))
	assert.False(t, clock.IsConsecutiveDay(d1, d3))
	assert.False(t, clock.IsConsecutiveDay(d1, d1))
}

func TestDaysBetween(t *testing.T) {
	clock := NewClock(time.UTC)

	a := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 4, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, clock.DaysBetween(a, b))
	assert.Equal(t, 3, clock.DaysBetween(b, a))
	assert.Equal(t, 0, clock.DaysBetween(a, a))
}

func TestFormatAndParseDay(t *testing.T) {
	clock := NewClock(time.UTC)

	at := time.Date(2026, 3, 1, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", clock.FormatDay(at))

	parsed, err := clock.ParseDay("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), parsed)
}

func TestNilLocationFallsBackToUTC(t *testing.T) {
	clock := NewClock(nil)
	assert.Equal(t, time.UTC, clock.Location())
}
