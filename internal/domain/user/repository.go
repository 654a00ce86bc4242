package user

import (
	"context"
)

// Repository persists users.
type Repository interface {
	// Create persists a new user.
	Create(ctx context.Context, u *User) error

	// GetByID returns a user by ID.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByUsername returns a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// ListIDs returns all user IDs. Used by the daily archiver to enumerate
	// the batch.
	ListIDs(ctx context.Context) ([]string, error)

	// ListTopByPoints returns users ordered by points descending. Fallback
	// read path for the leaderboard when the cache is unavailable.
	ListTopByPoints(ctx context.Context, limit int) ([]*User, error)
}
