// Package gamification contains the points, level, streak, and badge rules of
// TaskTrek. This is the core of the business logic - there are no external
// dependencies here, and no I/O: every function is a pure state transition.
package gamification

import (
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Points represents a user's cumulative score. Never negative.
type Points int

// IsValid checks that the points value is non-negative.
func (p Points) IsValid() bool {
	return p >= 0
}

// Level represents a tier derived purely from points.
type Level int

// PointsPerLevel is the width of a level band.
const PointsPerLevel = 100

// CalculateLevel derives the level from points.
// Formula: floor(points/100) + 1, so 0-99 points is level 1.
func CalculateLevel(p Points) Level {
	if p < 0 {
		p = 0
	}
	return Level(p/PointsPerLevel) + 1
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile is the gamification state of a single user. Exactly one profile
// exists per user, created together with the user and never deleted while the
// user exists.
type Profile struct {
	// UserID is the owning user's ID (UUID in string form).
	UserID string

	// Points is the cumulative score. Clamped at zero on any decrement.
	Points Points

	// Level is the tier derived from Points. Stored denormalized for reads,
	// but only ever written as CalculateLevel(Points).
	Level Level

	// StreakCount is the number of consecutive active days.
	StreakCount int

	// LastActiveDate is the local day of the most recent completion, used to
	// maintain StreakCount.
	LastActiveDate time.Time

	// badges is the set of earned badge names. Monotonic, duplicate-free.
	badges map[string]struct{}

	// Version is the optimistic-concurrency token. Incremented on every save.
	Version int64

	// LastUpdated is the time of the last mutation.
	LastUpdated time.Time
}

// NewProfile creates an empty profile for a user.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:      userID,
		Points:      0,
		Level:       CalculateLevel(0),
		StreakCount: 0,
		badges:      make(map[string]struct{}),
		LastUpdated: time.Now().UTC(),
	}
}

// Badges returns the badge names in sorted order.
func (p *Profile) Badges() []string {
	names := make([]string, 0, len(p.badges))
	for name := range p.badges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasBadge reports whether the badge has already been earned.
func (p *Profile) HasBadge(name string) bool {
	_, ok := p.badges[name]
	return ok
}

// AddBadges unions the given names into the badge set. Re-adding an existing
// badge is a no-op, so the set stays duplicate-free and monotonic.
func (p *Profile) AddBadges(names ...string) {
	if p.badges == nil {
		p.badges = make(map[string]struct{})
	}
	for _, name := range names {
		p.badges[name] = struct{}{}
	}
	if len(names) > 0 {
		p.LastUpdated = time.Now().UTC()
	}
}

// SetBadges replaces the badge set. Used when loading from storage.
func (p *Profile) SetBadges(names []string) {
	p.badges = make(map[string]struct{}, len(names))
	for _, name := range names {
		p.badges[name] = struct{}{}
	}
}

// TouchStreak updates the streak for an activity happening at the given local
// time. Same day as LastActiveDate: no change. The day after: streak+1. Any
// gap (or first ever activity): streak resets to 1. The caller passes a time
// already converted to the reset timezone. LastActiveDate may have been
// rehydrated from storage in a different zone, so it is shifted into the zone
// of localNow before the day comparison.
func (p *Profile) TouchStreak(localNow time.Time) {
	last := p.LastActiveDate.In(localNow.Location())
	switch {
	case !p.LastActiveDate.IsZero() && sameDay(last, localNow):
		return
	case !p.LastActiveDate.IsZero() && sameDay(last.AddDate(0, 0, 1), localNow):
		p.StreakCount++
	default:
		p.StreakCount = 1
	}
	p.LastActiveDate = localNow
	p.LastUpdated = time.Now().UTC()
}

// sameDay expects both times in the same location.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// Normalize self-heals a profile read from storage: negative points are
// clamped and the level is recomputed from points. It returns a description of
// what was repaired, or "" when the profile was consistent.
func (p *Profile) Normalize() string {
	var repaired string
	if p.Points < 0 {
		repaired = fmt.Sprintf("points clamped from %d to 0", p.Points)
		p.Points = 0
	}
	if derived := CalculateLevel(p.Points); p.Level != derived {
		if repaired != "" {
			repaired += "; "
		}
		repaired += fmt.Sprintf("level recomputed from %d to %d", p.Level, derived)
		p.Level = derived
	}
	return repaired
}

// Clone creates a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.badges = make(map[string]struct{}, len(p.badges))
	for name := range p.badges {
		clone.badges[name] = struct{}{}
	}
	return &clone
}

// String returns a loggable representation of the profile.
func (p *Profile) String() string {
	return fmt.Sprintf("Profile{User: %s, Points: %d, Level: %d, Streak: %d, Badges: %d}",
		p.UserID, p.Points, p.Level, p.StreakCount, len(p.badges))
}
