// Package quest contains the daily quest aggregate: rotating per-user
// challenges with a numeric target and a one-time point reward. Quests are
// fully replaced at every reset boundary.
package quest

import (
	"math/rand"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUEST KIND
// ══════════════════════════════════════════════════════════════════════════════

// Kind is the typed quest-kind key. Progress resolution goes through this
// enum, never through title text - display text is decoupled from logic.
type Kind string

const (
	// KindCompleteTasks tracks tasks completed since the reset boundary.
	KindCompleteTasks Kind = "complete_n_tasks"

	// KindEarnPoints tracks points earned since the reset boundary.
	KindEarnPoints Kind = "earn_n_points"

	// KindReachStreak tracks the consecutive-day streak.
	KindReachStreak Kind = "reach_streak"
)

// IsValid reports whether the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindCompleteTasks, KindEarnPoints, KindReachStreak:
		return true
	default:
		return false
	}
}

// CounterFor resolves the kind to its live counter value.
func (k Kind) CounterFor(c gamification.Counters) (int, error) {
	switch k {
	case KindCompleteTasks:
		return c.TasksCompletedToday, nil
	case KindEarnPoints:
		return c.PointsEarnedToday, nil
	case KindReachStreak:
		return c.StreakDays, nil
	default:
		return 0, shared.ErrUnknownQuestKind
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: DAILY QUEST
// ══════════════════════════════════════════════════════════════════════════════

// DailyQuest is a per-user challenge for one reset cycle. Created at
// registration and at every reset, mutated by the tracker, destroyed at the
// next reset.
type DailyQuest struct {
	// ID is the quest's unique identifier (UUID in string form).
	ID string

	// OwnerID is the owning user's ID.
	OwnerID string

	// Kind is the typed quest-kind key.
	Kind Kind

	// Title is the display text. Logic never inspects it.
	Title string

	// Target is the counter value required for completion.
	Target int

	// PointsReward is granted once, on the false→true completion transition.
	PointsReward int

	// Progress is min(counter, Target).
	Progress int

	// IsCompleted latches true once Progress reaches Target.
	IsCompleted bool

	// CreatedAt is the creation time. The archiver uses it to detect quests
	// already generated for the current boundary.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// TEMPLATE POOL
// ══════════════════════════════════════════════════════════════════════════════

// Template describes one entry of the static quest template pool.
type Template struct {
	Kind         Kind
	Title        string
	Target       int
	PointsReward int
}

// DefaultTemplates is the built-in quest pool. One quest is drawn uniformly
// at random from it at every reset.
func DefaultTemplates() []Template {
	return []Template{
		{KindCompleteTasks, "Complete 3 tasks today", 3, 30},
		{KindCompleteTasks, "Complete 5 tasks today", 5, 50},
		{KindEarnPoints, "Earn 50 points today", 50, 25},
		{KindEarnPoints, "Earn 100 points today", 100, 60},
		{KindReachStreak, "Keep a 3-day streak going", 3, 40},
	}
}

// Generator draws new quests from a template pool.
type Generator struct {
	templates []Template
	rng       *rand.Rand
}

// NewGenerator creates a generator over the given pool. A nil rng falls back
// to a time-seeded source.
func NewGenerator(templates []Template, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{templates: templates, rng: rng}
}

// Generate draws one quest uniformly at random for the user.
func (g *Generator) Generate(questID, ownerID string, now time.Time) (*DailyQuest, error) {
	if len(g.templates) == 0 {
		return nil, shared.ErrEmptyQuestPool
	}

	tpl := g.templates[g.rng.Intn(len(g.templates))]
	return &DailyQuest{
		ID:           questID,
		OwnerID:      ownerID,
		Kind:         tpl.Kind,
		Title:        tpl.Title,
		Target:       tpl.Target,
		PointsReward: tpl.PointsReward,
		Progress:     0,
		IsCompleted:  false,
		CreatedAt:    now,
	}, nil
}
