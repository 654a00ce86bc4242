package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/tasktrek-hub/tasktrek/internal/domain/storage"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// Store implements storage.UnitOfWork over a pgx connection pool. Do binds a
// fresh repository set to one transaction, so every mutation made through it
// commits or rolls back as a whole.
type Store struct {
	conn *Connection
}

// NewStore creates a Store.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// Do runs fn inside a single transaction.
func (s *Store) Do(ctx context.Context, fn func(r storage.Repos) error) error {
	return s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(reposOver(tx))
	})
}

// Repos returns a pool-scoped repository set for reads and single-statement
// writes that need no transaction.
func (s *Store) Repos() storage.Repos {
	return reposOver(s.conn)
}

func reposOver(q Querier) storage.Repos {
	return storage.Repos{
		Users:       NewUserRepository(q),
		Profiles:    NewProfileRepository(q),
		Tasks:       NewTaskRepository(q),
		TaskHistory: NewHistoryRepository(q),
		Quests:      NewQuestRepository(q),
	}
}
