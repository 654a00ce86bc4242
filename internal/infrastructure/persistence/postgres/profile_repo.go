package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAMIFICATION PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements gamification.Repository for PostgreSQL.
// Save compares the version column for optimistic concurrency and keeps the
// denormalized points/level copy on the user row in lockstep, so it must run
// inside a unit-of-work transaction.
type ProfileRepository struct {
	q Querier
}

// NewProfileRepository creates a new ProfileRepository over a pool or transaction.
func NewProfileRepository(q Querier) *ProfileRepository {
	return &ProfileRepository{q: q}
}

// GetByUserID returns the profile owned by the user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*gamification.Profile, error) {
	query := `
		SELECT user_id, points, level, streak_count, last_active_date, badges, version, last_updated
		FROM gamification_profiles
		WHERE user_id = $1
	`

	var p gamification.Profile
	var points, level int
	var lastActive *time.Time
	var badges []string

	err := r.q.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&points,
		&level,
		&p.StreakCount,
		&lastActive,
		&badges,
		&p.Version,
		&p.LastUpdated,
	)

	if IsNoRows(err) {
		return nil, shared.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	p.Points = gamification.Points(points)
	p.Level = gamification.Level(level)
	if lastActive != nil {
		p.LastActiveDate = *lastActive
	}
	p.SetBadges(badges)

	return &p, nil
}

// Create persists a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *gamification.Profile) error {
	query := `
		INSERT INTO gamification_profiles (
			user_id, points, level, streak_count, last_active_date, badges, version, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.Exec(ctx, query,
		p.UserID,
		int(p.Points),
		int(p.Level),
		p.StreakCount,
		nullableTime(p.LastActiveDate),
		p.Badges(),
		p.Version,
		p.LastUpdated,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("gamification", "Create", shared.ErrAlreadyExists, "profile already exists", err)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// Save persists profile mutations with an optimistic version check, and
// updates the denormalized points/level copy on the user row.
func (r *ProfileRepository) Save(ctx context.Context, p *gamification.Profile) error {
	query := `
		UPDATE gamification_profiles SET
			points = $1,
			level = $2,
			streak_count = $3,
			last_active_date = $4,
			badges = $5,
			version = version + 1,
			last_updated = $6
		WHERE user_id = $7 AND version = $8
	`

	result, err := r.q.Exec(ctx, query,
		int(p.Points),
		int(p.Level),
		p.StreakCount,
		nullableTime(p.LastActiveDate),
		p.Badges(),
		time.Now().UTC(),
		p.UserID,
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a lost version race from a missing row.
		var exists bool
		err := r.q.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM gamification_profiles WHERE user_id = $1)",
			p.UserID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check profile existence: %w", err)
		}
		if exists {
			return shared.ErrConcurrentModification
		}
		return shared.ErrProfileNotFound
	}

	p.Version++

	_, err = r.q.Exec(ctx,
		"UPDATE users SET points = $1, level = $2, updated_at = $3 WHERE id = $4",
		int(p.Points),
		int(p.Level),
		time.Now().UTC(),
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update denormalized user points: %w", err)
	}

	return nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
