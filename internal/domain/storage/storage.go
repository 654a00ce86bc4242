// Package storage defines the transactional boundary the application layer
// works against. Commands that must mutate several aggregates atomically (a
// completion touching profile, user, and quests; the archiver's
// snapshot-clear-regenerate pass) run inside UnitOfWork.Do, which hands them a
// repository set bound to one transaction.
package storage

import (
	"context"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
)

// Repos bundles the repositories bound to one transaction.
type Repos struct {
	Users       user.Repository
	Profiles    gamification.Repository
	Tasks       task.Repository
	TaskHistory task.HistoryRepository
	Quests      quest.Repository
}

// UnitOfWork runs a function inside a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repos) error) error
}
