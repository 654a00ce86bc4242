package gamification

import (
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// POINTS LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// LedgerResult is the outcome of applying a points delta.
type LedgerResult struct {
	// Profile is the updated profile.
	Profile *Profile

	// LeveledUp is true when the derived level increased.
	LeveledUp bool
}

// ApplyDelta applies a signed points delta to a profile and returns the
// updated profile. This is the single writer for points and level: no other
// code path may set either field.
//
// Rules:
//   - points' = max(0, points + delta)
//   - level'  = floor(points'/100) + 1
//   - leveledUp iff level' > level
//
// The input profile is not mutated; the caller persists the returned copy and
// is responsible for calling ApplyDelta exactly once per logical completion or
// un-completion event. The ledger does not deduplicate repeated calls.
func ApplyDelta(profile *Profile, delta int) (LedgerResult, error) {
	if profile == nil {
		return LedgerResult{}, shared.ErrMissingProfile
	}

	updated := profile.Clone()

	raw := int(updated.Points) + delta
	if raw < 0 {
		raw = 0
	}
	updated.Points = Points(raw)

	oldLevel := profile.Level
	updated.Level = CalculateLevel(updated.Points)

	return LedgerResult{
		Profile:   updated,
		LeveledUp: updated.Level > oldLevel,
	}, nil
}
