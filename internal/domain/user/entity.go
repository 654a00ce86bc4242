// Package user contains the user identity entity. Authentication itself is
// out of scope - the engine only operates on a given user ID - but the user
// record carries a denormalized points/level copy that must stay in lockstep
// with the gamification profile.
package user

import (
	"strings"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// User is a registered account. Exactly one gamification profile exists per
// user, created together with it in one transaction.
type User struct {
	// ID is the unique identifier (UUID in string form).
	ID string

	// Username is the unique login name.
	Username string

	// PasswordHash is the bcrypt hash of the password. Verification happens
	// in the out-of-scope auth layer.
	PasswordHash string

	// Points and Level are a denormalized copy of the gamification profile
	// values, updated in the same transaction as the profile. Reads may use
	// either surface; the ledger is the only writer of both.
	Points gamification.Points
	Level  gamification.Level

	// CreatedAt is the registration time.
	CreatedAt time.Time

	// UpdatedAt is the time of the last mutation.
	UpdatedAt time.Time
}

// NewUser creates a user with field validation. The password hash is produced
// by the caller.
func NewUser(id, username, passwordHash string) (*User, error) {
	if id == "" {
		return nil, shared.NewDomainError("user", "Create", shared.ErrInvalidID, "user id is required")
	}

	username = strings.TrimSpace(username)
	if len(username) < 2 || len(username) > 50 || strings.ContainsAny(username, " \t\n\r") {
		return nil, shared.ErrInvalidUsername
	}

	now := time.Now().UTC()
	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Points:       0,
		Level:        gamification.CalculateLevel(0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
