package quest

import (
	"context"
)

// Repository persists daily quests.
type Repository interface {
	// ListByOwner returns the user's current quests.
	ListByOwner(ctx context.Context, ownerID string) ([]*DailyQuest, error)

	// Create persists a new quest.
	Create(ctx context.Context, q *DailyQuest) error

	// Update persists progress/completion mutations.
	Update(ctx context.Context, q *DailyQuest) error

	// DeleteByOwner removes all quests of a user. Called by the archiver
	// before generating the next cycle's quest.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
