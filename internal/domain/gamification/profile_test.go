package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestTouchStreak_FirstActivity(t *testing.T) {
	p := NewProfile("user-1")

	p.TouchStreak(day(2026, 3, 1))

	assert.Equal(t, 1, p.StreakCount)
}

func TestTouchStreak_SameDayNoChange(t *testing.T) {
	p := NewProfile("user-1")
	p.TouchStreak(day(2026, 3, 1))

	p.TouchStreak(day(2026, 3, 1).Add(4 * time.Hour))

	assert.Equal(t, 1, p.StreakCount)
}

func TestTouchStreak_ConsecutiveDayIncrements(t *testing.T) {
	p := NewProfile("user-1")
	p.TouchStreak(day(2026, 3, 1))
	p.TouchStreak(day(2026, 3, 2))
	p.TouchStreak(day(2026, 3, 3))

	assert.Equal(t, 3, p.StreakCount)
}

func TestTouchStreak_SameLocalDayAfterStorageRoundTrip(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	p := NewProfile("user-1")
	p.TouchStreak(time.Date(2026, 1, 3, 1, 0, 0, 0, zone))

	// Timestamps come back from storage in UTC; 01:00 +05 is still the
	// previous UTC day.
	p.LastActiveDate = p.LastActiveDate.UTC()
	p.TouchStreak(time.Date(2026, 1, 3, 9, 0, 0, 0, zone))

	assert.Equal(t, 1, p.StreakCount)
}

func TestTouchStreak_ConsecutiveLocalDayAfterStorageRoundTrip(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	p := NewProfile("user-1")
	p.TouchStreak(time.Date(2026, 1, 3, 1, 0, 0, 0, zone))

	p.LastActiveDate = p.LastActiveDate.UTC()
	p.TouchStreak(time.Date(2026, 1, 4, 9, 0, 0, 0, zone))

	assert.Equal(t, 2, p.StreakCount)
}

func TestTouchStreak_GapResets(t *testing.T) {
	p := NewProfile("user-1")
	p.TouchStreak(day(2026, 3, 1))
	p.TouchStreak(day(2026, 3, 2))

	p.TouchStreak(day(2026, 3, 5))

	assert.Equal(t, 1, p.StreakCount)
}

func TestNormalize_RepairsNegativePointsAndLevel(t *testing.T) {
	p := NewProfile("user-1")
	p.Points = -20
	p.Level = 7

	repaired := p.Normalize()

	assert.NotEmpty(t, repaired)
	assert.Equal(t, Points(0), p.Points)
	assert.Equal(t, Level(1), p.Level)
}

func TestNormalize_ConsistentProfileUntouched(t *testing.T) {
	p := NewProfile("user-1")
	p.Points = 150
	p.Level = CalculateLevel(p.Points)

	assert.Empty(t, p.Normalize())
	assert.Equal(t, Points(150), p.Points)
}

func TestClone_Independent(t *testing.T) {
	p := NewProfile("user-1")
	p.AddBadges("first-task")

	clone := p.Clone()
	clone.AddBadges("streak-3")
	clone.Points = 99

	assert.Equal(t, Points(0), p.Points)
	assert.False(t, p.HasBadge("streak-3"))
	assert.True(t, clone.HasBadge("first-task"))
}
