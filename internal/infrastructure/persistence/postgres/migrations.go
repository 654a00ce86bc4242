package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users_and_profiles",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_tasks_and_history",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_daily_quests",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	points        INTEGER NOT NULL DEFAULT 0,
	level         INTEGER NOT NULL DEFAULT 1,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE gamification_profiles (
	user_id          UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	points           INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
	level            INTEGER NOT NULL DEFAULT 1,
	streak_count     INTEGER NOT NULL DEFAULT 0,
	last_active_date TIMESTAMPTZ,
	badges           TEXT[] NOT NULL DEFAULT '{}',
	version          BIGINT NOT NULL DEFAULT 0,
	last_updated     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_users_points ON users(points DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS gamification_profiles;
DROP TABLE IF EXISTS users;
`

const migration002Up = `
CREATE TABLE tasks (
	id          UUID PRIMARY KEY,
	owner_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT '',
	is_done     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_tasks_owner ON tasks(owner_id);

CREATE TABLE task_history (
	id           UUID PRIMARY KEY,
	owner_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	task_id      UUID NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	priority     TEXT NOT NULL DEFAULT '',
	date         TIMESTAMPTZ NOT NULL,
	is_done      BOOLEAN NOT NULL,
	completed_at TIMESTAMPTZ,
	archived_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX idx_task_history_owner_date ON task_history(owner_id, date DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS task_history;
DROP TABLE IF EXISTS tasks;
`

const migration003Up = `
CREATE TABLE daily_quests (
	id            UUID PRIMARY KEY,
	owner_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	kind          TEXT NOT NULL,
	title         TEXT NOT NULL,
	target        INTEGER NOT NULL,
	points_reward INTEGER NOT NULL,
	progress      INTEGER NOT NULL DEFAULT 0,
	is_completed  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_daily_quests_owner ON daily_quests(owner_id);
`

const migration003Down = `
DROP TABLE IF EXISTS daily_quests;
`
