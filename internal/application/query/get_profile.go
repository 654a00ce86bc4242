package query

import (
	"context"
	"errors"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ProfileDTO is the gamification profile view.
type ProfileDTO struct {
	UserID         string    `json:"user_id"`
	Points         int       `json:"points"`
	Level          int       `json:"level"`
	PointsToNext   int       `json:"points_to_next_level"`
	StreakCount    int       `json:"streak_count"`
	Badges         []string  `json:"badges"`
	LastActiveDate time.Time `json:"last_active_date"`
	Rank           int64     `json:"rank,omitempty"`
}

// GetProfileHandler returns a user's gamification profile.
type GetProfileHandler struct {
	profiles gamification.Repository
	board    gamification.Leaderboard
}

// NewGetProfileHandler creates the handler. The leaderboard may be nil; rank
// is then omitted.
func NewGetProfileHandler(profiles gamification.Repository, board gamification.Leaderboard) *GetProfileHandler {
	return &GetProfileHandler{profiles: profiles, board: board}
}

// Handle returns the profile view.
func (h *GetProfileHandler) Handle(ctx context.Context, userID string) (*ProfileDTO, error) {
	if userID == "" {
		return nil, shared.WrapError("query", "GetProfile", shared.ErrValidation,
			"invalid query", errors.New("user_id is required"))
	}

	p, err := h.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Normalize()

	dto := &ProfileDTO{
		UserID:         p.UserID,
		Points:         int(p.Points),
		Level:          int(p.Level),
		PointsToNext:   int(p.Level)*gamification.PointsPerLevel - int(p.Points),
		StreakCount:    p.StreakCount,
		Badges:         p.Badges(),
		LastActiveDate: p.LastActiveDate,
	}

	if h.board != nil {
		if rank, err := h.board.Rank(ctx, userID); err == nil {
			dto.Rank = rank
		}
	}

	return dto, nil
}
