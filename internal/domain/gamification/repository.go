package gamification

import (
	"context"
)

// Repository persists gamification profiles.
type Repository interface {
	// GetByUserID returns the profile owned by the user.
	GetByUserID(ctx context.Context, userID string) (*Profile, error)

	// Create persists a new profile.
	Create(ctx context.Context, p *Profile) error

	// Save persists profile mutations. Implementations must compare the
	// profile's Version against the stored row and return
	// shared.ErrConcurrentModification on mismatch, incrementing Version on
	// success. The denormalized points/level copy on the user record is
	// updated in the same transaction.
	Save(ctx context.Context, p *Profile) error
}
