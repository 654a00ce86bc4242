// Package memory implements the storage interfaces in process memory. It
// backs unit tests and local development without postgres; transactions are
// emulated by snapshotting state and restoring it when the function fails.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/storage"
	"github.com/tasktrek-hub/tasktrek/internal/domain/task"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
)

// Hooks inject errors into specific operations. Used by tests to simulate
// storage failures.
type Hooks struct {
	// BeforeTaskList fires before listing a user's tasks.
	BeforeTaskList func(ownerID string) error

	// BeforeQuestCreate fires before inserting a quest.
	BeforeQuestCreate func(q *quest.DailyQuest) error

	// BeforeProfileSave fires before saving a profile.
	BeforeProfileSave func(p *gamification.Profile) error
}

// Store is an in-memory implementation of storage.UnitOfWork and all
// repository interfaces. Transactions serialize on a single mutex.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[string]*user.User
	profiles map[string]*gamification.Profile
	tasks    map[string]*task.Task
	history  map[string][]task.HistoryRecord
	quests   map[string]*quest.DailyQuest

	Hooks Hooks
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*user.User),
		profiles: make(map[string]*gamification.Profile),
		tasks:    make(map[string]*task.Task),
		history:  make(map[string][]task.HistoryRecord),
		quests:   make(map[string]*quest.DailyQuest),
	}
}

// Do implements storage.UnitOfWork. State is restored on error, so a failed
// function leaves no partial writes behind.
func (s *Store) Do(ctx context.Context, fn func(r storage.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.Repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Repos returns the repository set over this store.
func (s *Store) Repos() storage.Repos {
	return storage.Repos{
		Users:       &userRepo{s},
		Profiles:    &profileRepo{s},
		Tasks:       &taskRepo{s},
		TaskHistory: &historyRepo{s},
		Quests:      &questRepo{s},
	}
}

type state struct {
	users    map[string]*user.User
	profiles map[string]*gamification.Profile
	tasks    map[string]*task.Task
	history  map[string][]task.HistoryRecord
	quests   map[string]*quest.DailyQuest
}

func (s *Store) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := state{
		users:    make(map[string]*user.User, len(s.users)),
		profiles: make(map[string]*gamification.Profile, len(s.profiles)),
		tasks:    make(map[string]*task.Task, len(s.tasks)),
		history:  make(map[string][]task.HistoryRecord, len(s.history)),
		quests:   make(map[string]*quest.DailyQuest, len(s.quests)),
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	for id, p := range s.profiles {
		snap.profiles[id] = p.Clone()
	}
	for id, t := range s.tasks {
		cp := *t
		snap.tasks[id] = &cp
	}
	for owner, recs := range s.history {
		snap.history[owner] = append([]task.HistoryRecord(nil), recs...)
	}
	for id, q := range s.quests {
		cp := *q
		snap.quests[id] = &cp
	}
	return snap
}

func (s *Store) restore(snap state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.profiles = snap.profiles
	s.tasks = snap.tasks
	s.history = snap.history
	s.quests = snap.quests
}

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return shared.ErrUserAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *userRepo) ListIDs(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]*user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (r *userRepo) ListTopByPoints(_ context.Context, limit int) ([]*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]*user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Points > users[j].Points })

	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

type profileRepo struct{ s *Store }

func (r *profileRepo) GetByUserID(_ context.Context, userID string) (*gamification.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (r *profileRepo) Create(_ context.Context, p *gamification.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[p.UserID] = p.Clone()
	return nil
}

func (r *profileRepo) Save(_ context.Context, p *gamification.Profile) error {
	if r.s.Hooks.BeforeProfileSave != nil {
		if err := r.s.Hooks.BeforeProfileSave(p); err != nil {
			return err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.profiles[p.UserID]
	if !ok {
		return shared.ErrProfileNotFound
	}
	if stored.Version != p.Version {
		return shared.ErrConcurrentModification
	}

	p.Version++
	p.LastUpdated = time.Now().UTC()
	r.s.profiles[p.UserID] = p.Clone()

	if u, ok := r.s.users[p.UserID]; ok {
		u.Points = p.Points
		u.Level = p.Level
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(_ context.Context, t *task.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.tasks[t.ID] = &cp
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id string) (*task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, shared.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *taskRepo) ListByOwner(_ context.Context, ownerID string) ([]*task.Task, error) {
	if r.s.Hooks.BeforeTaskList != nil {
		if err := r.s.Hooks.BeforeTaskList(ownerID); err != nil {
			return nil, err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var tasks []*task.Task
	for _, t := range r.s.tasks {
		if t.OwnerID == ownerID {
			cp := *t
			tasks = append(tasks, &cp)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

func (r *taskRepo) Update(_ context.Context, t *task.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[t.ID]; !ok {
		return shared.ErrTaskNotFound
	}
	cp := *t
	r.s.tasks[t.ID] = &cp
	return nil
}

func (r *taskRepo) CountCompletedByOwner(_ context.Context, ownerID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, t := range r.s.tasks {
		if t.OwnerID == ownerID && t.IsDone {
			count++
		}
	}
	return count, nil
}

func (r *taskRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, t := range r.s.tasks {
		if t.OwnerID == ownerID {
			delete(r.s.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK HISTORY REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

type historyRepo struct{ s *Store }

func (r *historyRepo) CreateBatch(_ context.Context, records []task.HistoryRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range records {
		r.s.history[rec.OwnerID] = append(r.s.history[rec.OwnerID], rec)
	}
	return nil
}

func (r *historyRepo) ListByOwner(_ context.Context, ownerID string, limit int) ([]task.HistoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	records := append([]task.HistoryRecord(nil), r.s.history[ownerID]...)
	sort.Slice(records, func(i, j int) bool { return records[i].ArchivedAt.After(records[j].ArchivedAt) })

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func (r *historyRepo) CountCompletedByOwner(_ context.Context, ownerID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, rec := range r.s.history[ownerID] {
		if rec.IsDone {
			count++
		}
	}
	return count, nil
}

func (r *historyRepo) ListByOwnerAndDate(_ context.Context, ownerID string, date time.Time) ([]task.HistoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var records []task.HistoryRecord
	for _, rec := range r.s.history[ownerID] {
		if rec.Date.Equal(date) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUEST REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

type questRepo struct{ s *Store }

func (r *questRepo) ListByOwner(_ context.Context, ownerID string) ([]*quest.DailyQuest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var quests []*quest.DailyQuest
	for _, q := range r.s.quests {
		if q.OwnerID == ownerID {
			cp := *q
			quests = append(quests, &cp)
		}
	}
	sort.Slice(quests, func(i, j int) bool { return quests[i].CreatedAt.Before(quests[j].CreatedAt) })
	return quests, nil
}

func (r *questRepo) Create(_ context.Context, q *quest.DailyQuest) error {
	if r.s.Hooks.BeforeQuestCreate != nil {
		if err := r.s.Hooks.BeforeQuestCreate(q); err != nil {
			return err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *q
	r.s.quests[q.ID] = &cp
	return nil
}

func (r *questRepo) Update(_ context.Context, q *quest.DailyQuest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.quests[q.ID]
	if !ok {
		return shared.ErrQuestNotFound
	}
	stored.Progress = q.Progress
	stored.IsCompleted = q.IsCompleted
	return nil
}

func (r *questRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, q := range r.s.quests {
		if q.OwnerID == ownerID {
			delete(r.s.quests, id)
		}
	}
	return nil
}
