package query

import (
	"context"
	"errors"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
	"github.com/tasktrek-hub/tasktrek/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Reads the Redis ranking when available and falls back to a points-ordered
// postgres scan otherwise.
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// LeaderboardEntryDTO is one ranked row.
type LeaderboardEntryDTO struct {
	Rank     int64  `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
}

// GetLeaderboardHandler returns the top-N points ranking.
type GetLeaderboardHandler struct {
	board gamification.Leaderboard
	users user.Repository
	log   *logger.Logger
}

// NewGetLeaderboardHandler creates the handler. The leaderboard may be nil;
// every read then goes through postgres.
func NewGetLeaderboardHandler(board gamification.Leaderboard, users user.Repository, log *logger.Logger) *GetLeaderboardHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetLeaderboardHandler{
		board: board,
		users: users,
		log:   log.With(logger.Component("get_leaderboard")),
	}
}

// Handle returns the top limit entries.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, limit int) ([]LeaderboardEntryDTO, error) {
	if limit < 0 {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrValidation,
			"invalid query", errors.New("limit cannot be negative"))
	}
	if limit == 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	if h.board != nil {
		entries, err := h.board.Top(ctx, limit)
		if err == nil && len(entries) > 0 {
			return h.enrich(ctx, entries), nil
		}
		if err != nil {
			h.log.Warn("leaderboard cache read failed, falling back to postgres", logger.Err(err))
		}
	}

	return h.fromStorage(ctx, limit)
}

// enrich resolves usernames and levels for cached entries. A missing user is
// returned with the ID only.
func (h *GetLeaderboardHandler) enrich(ctx context.Context, entries []gamification.LeaderboardEntry) []LeaderboardEntryDTO {
	dtos := make([]LeaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		dto := LeaderboardEntryDTO{
			Rank:   e.Rank,
			UserID: e.UserID,
			Points: e.Points,
			Level:  int(gamification.CalculateLevel(gamification.Points(e.Points))),
		}
		if u, err := h.users.GetByID(ctx, e.UserID); err == nil {
			dto.Username = u.Username
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

// fromStorage serves the ranking from the denormalized user rows.
func (h *GetLeaderboardHandler) fromStorage(ctx context.Context, limit int) ([]LeaderboardEntryDTO, error) {
	users, err := h.users.ListTopByPoints(ctx, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]LeaderboardEntryDTO, 0, len(users))
	for i, u := range users {
		dtos = append(dtos, LeaderboardEntryDTO{
			Rank:     int64(i) + 1,
			UserID:   u.ID,
			Username: u.Username,
			Points:   int(u.Points),
			Level:    int(u.Level),
		})
	}
	return dtos, nil
}
