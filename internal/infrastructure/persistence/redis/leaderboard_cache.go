package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUserNotRanked is returned when the user has no leaderboard score.
	ErrUserNotRanked = errors.New("leaderboard_cache: user not ranked")
)

// keyLeaderboard is the sorted set mapping user ID to points.
const keyLeaderboard = "leaderboard:points"

// LeaderboardCache keeps the points ranking in a Redis sorted set,
// implementing gamification.Leaderboard. Writes happen on every completion;
// rank and top-N reads are O(log N). The cache is best-effort - a write
// failure is logged by the caller, never surfaced to the user.
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a new LeaderboardCache instance.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// SetScore updates a user's points score.
func (l *LeaderboardCache) SetScore(ctx context.Context, userID string, points int) error {
	if userID == "" {
		return ErrCacheKeyEmpty
	}

	return l.cache.Client().ZAdd(ctx, keyLeaderboard, redis.Z{
		Score:  float64(points),
		Member: userID,
	}).Err()
}

// Remove drops a user from the ranking.
func (l *LeaderboardCache) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrCacheKeyEmpty
	}

	return l.cache.Client().ZRem(ctx, keyLeaderboard, userID).Err()
}

// Top returns the highest-scoring entries, best first.
func (l *LeaderboardCache) Top(ctx context.Context, count int) ([]gamification.LeaderboardEntry, error) {
	if count <= 0 {
		return []gamification.LeaderboardEntry{}, nil
	}

	rows, err := l.cache.Client().ZRevRangeWithScores(ctx, keyLeaderboard, 0, int64(count-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]gamification.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		id, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, gamification.LeaderboardEntry{
			UserID: id,
			Points: int(row.Score),
			Rank:   int64(i) + 1,
		})
	}

	return entries, nil
}

// Rank returns a user's 1-based rank.
func (l *LeaderboardCache) Rank(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrCacheKeyEmpty
	}

	rank, err := l.cache.Client().ZRevRank(ctx, keyLeaderboard, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrUserNotRanked
		}
		return 0, err
	}

	return rank + 1, nil
}

// Count returns the number of ranked users.
func (l *LeaderboardCache) Count(ctx context.Context) (int64, error) {
	return l.cache.Client().ZCard(ctx, keyLeaderboard).Result()
}
