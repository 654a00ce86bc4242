package postgres

import (
	"context"
	"fmt"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository over a pool or transaction.
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, points, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		u.ID,
		u.Username,
		u.PasswordHash,
		int(u.Points),
		int(u.Level),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `
		SELECT id, username, password_hash, points, level, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(ctx, query, id)
}

// GetByUsername returns a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `
		SELECT id, username, password_hash, points, level, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	return r.scanUser(ctx, query, username)
}

// ListIDs returns all user IDs, ordered for a stable archive batch.
func (r *UserRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, "SELECT id FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListTopByPoints returns users ordered by points descending. This is the
// leaderboard fallback when the cache is unavailable.
func (r *UserRepository) ListTopByPoints(ctx context.Context, limit int) ([]*user.User, error) {
	if limit <= 0 {
		return []*user.User{}, nil
	}

	query := `
		SELECT id, username, password_hash, points, level, created_at, updated_at
		FROM users
		ORDER BY points DESC, created_at
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by points: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		var points, level int
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&points,
			&level,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Points = gamification.Points(points)
		u.Level = gamification.Level(level)
		users = append(users, &u)
	}

	return users, rows.Err()
}

func (r *UserRepository) scanUser(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	var points, level int

	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&points,
		&level,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.Points = gamification.Points(points)
	u.Level = gamification.Level(level)

	return &u, nil
}
