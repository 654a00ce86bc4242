// Package eventhandler contains event bus subscribers that react to domain
// events with side effects outside the originating transaction.
package eventhandler

import (
	"context"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
	"github.com/tasktrek-hub/tasktrek/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REFRESHER
// Rewarms the leaderboard cache from the denormalized user rows after each
// archive run, so a cache that was cold or evicted during the night is
// consistent again by morning.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRefresher subscribes to archive completion events.
type LeaderboardRefresher struct {
	board   gamification.Leaderboard
	users   user.Repository
	log     *logger.Logger
	limit   int
	timeout time.Duration
}

// NewLeaderboardRefresher creates the refresher.
func NewLeaderboardRefresher(board gamification.Leaderboard, users user.Repository, log *logger.Logger) *LeaderboardRefresher {
	if log == nil {
		log = logger.Default()
	}
	return &LeaderboardRefresher{
		board:   board,
		users:   users,
		log:     log.With(logger.Component("leaderboard_refresher")),
		limit:   500,
		timeout: 30 * time.Second,
	}
}

// Handle implements shared.EventHandler for EventArchiveCompleted.
func (h *LeaderboardRefresher) Handle(event shared.Event) error {
	if event.Type() != shared.EventArchiveCompleted {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	top, err := h.users.ListTopByPoints(ctx, h.limit)
	if err != nil {
		return err
	}

	refreshed := 0
	for _, u := range top {
		if err := h.board.SetScore(ctx, u.ID, int(u.Points)); err != nil {
			h.log.Warn("leaderboard refresh write failed",
				logger.UserID(u.ID),
				logger.Err(err),
			)
			continue
		}
		refreshed++
	}

	h.log.Info("leaderboard cache refreshed",
		logger.Int("users", refreshed),
	)
	return nil
}
