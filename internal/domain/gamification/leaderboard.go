package gamification

import (
	"context"
)

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	UserID string
	Points int
	Rank   int64
}

// Leaderboard maintains the points ranking. Implementations are best-effort
// caches: postgres stays the source of truth and callers must tolerate
// failures.
type Leaderboard interface {
	// SetScore records a user's current points.
	SetScore(ctx context.Context, userID string, points int) error

	// Top returns the highest-scoring entries, best first.
	Top(ctx context.Context, count int) ([]LeaderboardEntry, error)

	// Rank returns a user's 1-based rank.
	Rank(ctx context.Context, userID string) (int64, error)
}
