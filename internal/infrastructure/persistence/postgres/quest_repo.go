package postgres

import (
	"context"
	"fmt"

	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY QUEST REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// QuestRepository implements quest.Repository for PostgreSQL.
type QuestRepository struct {
	q Querier
}

// NewQuestRepository creates a new QuestRepository over a pool or transaction.
func NewQuestRepository(q Querier) *QuestRepository {
	return &QuestRepository{q: q}
}

// ListByOwner returns the user's current quests.
func (r *QuestRepository) ListByOwner(ctx context.Context, ownerID string) ([]*quest.DailyQuest, error) {
	query := `
		SELECT id, owner_id, kind, title, target, points_reward, progress, is_completed, created_at
		FROM daily_quests
		WHERE owner_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	var quests []*quest.DailyQuest
	for rows.Next() {
		var dq quest.DailyQuest
		var kind string

		err := rows.Scan(
			&dq.ID,
			&dq.OwnerID,
			&kind,
			&dq.Title,
			&dq.Target,
			&dq.PointsReward,
			&dq.Progress,
			&dq.IsCompleted,
			&dq.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}

		dq.Kind = quest.Kind(kind)
		quests = append(quests, &dq)
	}

	return quests, rows.Err()
}

// Create persists a new quest.
func (r *QuestRepository) Create(ctx context.Context, dq *quest.DailyQuest) error {
	query := `
		INSERT INTO daily_quests (id, owner_id, kind, title, target, points_reward, progress, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.Exec(ctx, query,
		dq.ID,
		dq.OwnerID,
		string(dq.Kind),
		dq.Title,
		dq.Target,
		dq.PointsReward,
		dq.Progress,
		dq.IsCompleted,
		dq.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quest: %w", err)
	}

	return nil
}

// Update persists progress/completion mutations.
func (r *QuestRepository) Update(ctx context.Context, dq *quest.DailyQuest) error {
	query := `
		UPDATE daily_quests SET
			progress = $1,
			is_completed = $2
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, dq.Progress, dq.IsCompleted, dq.ID)
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrQuestNotFound
	}

	return nil
}

// DeleteByOwner removes all quests of a user.
func (r *QuestRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.q.Exec(ctx, "DELETE FROM daily_quests WHERE owner_id = $1", ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete quests: %w", err)
	}
	return nil
}
