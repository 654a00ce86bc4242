package gamification

// ══════════════════════════════════════════════════════════════════════════════
// BADGE EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// Counters are the live progress counters badge predicates and quest progress
// functions read. They are assembled by the caller from persisted state.
type Counters struct {
	// TasksCompletedTotal is the lifetime number of completed tasks,
	// including archived ones.
	TasksCompletedTotal int

	// TasksCompletedToday is the number of tasks completed since the last
	// reset boundary.
	TasksCompletedToday int

	// PointsEarnedToday is the number of points earned since the last reset
	// boundary.
	PointsEarnedToday int

	// StreakDays is the current consecutive-day streak.
	StreakDays int

	// LifetimePoints is the cumulative points total ever earned (never
	// reduced by un-completions).
	LifetimePoints int
}

// Badge pairs a name with its earning predicate. The table is static and
// ordered; ordering only affects the order newly earned names are returned in.
type Badge struct {
	Name      string
	Predicate func(p *Profile, c Counters) bool
}

// badgeTable is the static threshold table. Predicates must be deterministic
// and side-effect-free.
var badgeTable = []Badge{
	{"first-task", func(_ *Profile, c Counters) bool { return c.TasksCompletedTotal >= 1 }},
	{"task-novice", func(_ *Profile, c Counters) bool { return c.TasksCompletedTotal >= 10 }},
	{"task-adept", func(_ *Profile, c Counters) bool { return c.TasksCompletedTotal >= 50 }},
	{"task-master", func(_ *Profile, c Counters) bool { return c.TasksCompletedTotal >= 100 }},
	{"centurion", func(_ *Profile, c Counters) bool { return c.LifetimePoints >= 100 }},
	{"point-hoarder", func(_ *Profile, c Counters) bool { return c.LifetimePoints >= 500 }},
	{"level-5", func(p *Profile, _ Counters) bool { return p.Level >= 5 }},
	{"level-10", func(p *Profile, _ Counters) bool { return p.Level >= 10 }},
	{"streak-3", func(_ *Profile, c Counters) bool { return c.StreakDays >= 3 }},
	{"week-warrior", func(_ *Profile, c Counters) bool { return c.StreakDays >= 7 }},
	{"unstoppable", func(_ *Profile, c Counters) bool { return c.StreakDays >= 30 }},
}

// BadgeTable returns the static badge table.
func BadgeTable() []Badge {
	return badgeTable
}

// EvaluateBadges returns the names of badges newly earned by the profile given
// the current counters: a badge is in the result iff its predicate holds now
// and the name is not already in the profile's badge set.
//
// The function is deterministic and side-effect-free. The caller unions the
// result into the persisted badge set; because earned badges are excluded
// here, re-evaluating with identical inputs after that union yields an empty
// result - a badge can never be awarded twice.
func EvaluateBadges(profile *Profile, counters Counters) []string {
	if profile == nil {
		return nil
	}

	var earned []string
	for _, b := range badgeTable {
		if profile.HasBadge(b.Name) {
			continue
		}
		if b.Predicate(profile, counters) {
			earned = append(earned, b.Name)
		}
	}
	return earned
}
