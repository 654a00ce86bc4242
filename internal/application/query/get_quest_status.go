// Package query contains read operations (CQRS - Queries). Queries never
// modify state.
package query

import (
	"context"
	"errors"

	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET QUEST STATUS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// QuestStatusDTO is one quest's progress view.
type QuestStatusDTO struct {
	QuestID      string `json:"quest_id"`
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Progress     int    `json:"progress"`
	Target       int    `json:"target"`
	PointsReward int    `json:"points_reward"`
	IsCompleted  bool   `json:"is_completed"`
}

// GetQuestStatusHandler returns a user's current quests with progress.
type GetQuestStatusHandler struct {
	quests quest.Repository
}

// NewGetQuestStatusHandler creates the handler.
func NewGetQuestStatusHandler(quests quest.Repository) *GetQuestStatusHandler {
	return &GetQuestStatusHandler{quests: quests}
}

// Handle returns the quest status list. Progress is served as persisted by
// the last pipeline run; the query itself never re-resolves counters.
func (h *GetQuestStatusHandler) Handle(ctx context.Context, userID string) ([]QuestStatusDTO, error) {
	if userID == "" {
		return nil, shared.WrapError("query", "GetQuestStatus", shared.ErrValidation,
			"invalid query", errors.New("user_id is required"))
	}

	quests, err := h.quests.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]QuestStatusDTO, 0, len(quests))
	for _, q := range quests {
		statuses = append(statuses, QuestStatusDTO{
			QuestID:      q.ID,
			Kind:         string(q.Kind),
			Title:        q.Title,
			Progress:     q.Progress,
			Target:       q.Target,
			PointsReward: q.PointsReward,
			IsCompleted:  q.IsCompleted,
		})
	}

	return statuses, nil
}
