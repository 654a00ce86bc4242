package quest

import (
	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUEST TRACKER
// ══════════════════════════════════════════════════════════════════════════════

// Reward identifies a quest reward to be granted through the points ledger,
// exactly once.
type Reward struct {
	QuestID      string
	Kind         Kind
	PointsReward int
}

// TrackerResult is the outcome of a progress update pass.
type TrackerResult struct {
	// UpdatedQuests are the quests after progress resolution, in input order.
	UpdatedQuests []*DailyQuest

	// RewardsToGrant lists the quests that transitioned false→true in this
	// pass. The caller applies each PointsReward via the ledger exactly once
	// and persists UpdatedQuests.
	RewardsToGrant []Reward
}

// UpdateProgress resolves each quest's progress against the live counters.
//
//   - progress' = min(counter, target)
//   - isCompleted' = isCompleted ∨ (progress' ≥ target)
//   - a reward is emitted only on the false→true transition; an already
//     completed quest never re-emits, no matter how often it is re-evaluated.
//
// Input quests are not mutated. An unknown quest kind fails the whole pass;
// quest records only ever carry kinds from the template pool, so this
// indicates corrupted data rather than a user error.
func UpdateProgress(quests []*DailyQuest, counters gamification.Counters) (TrackerResult, error) {
	result := TrackerResult{
		UpdatedQuests: make([]*DailyQuest, 0, len(quests)),
	}

	for _, q := range quests {
		counter, err := q.Kind.CounterFor(counters)
		if err != nil {
			return TrackerResult{}, err
		}

		updated := *q
		progress := counter
		if progress > q.Target {
			progress = q.Target
		}
		updated.Progress = progress

		if !q.IsCompleted && progress >= q.Target {
			updated.IsCompleted = true
			result.RewardsToGrant = append(result.RewardsToGrant, Reward{
				QuestID:      q.ID,
				Kind:         q.Kind,
				PointsReward: q.PointsReward,
			})
		}

		result.UpdatedQuests = append(result.UpdatedQuests, &updated)
	}

	return result, nil
}
