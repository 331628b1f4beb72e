// Package sqlite provides SQLite-based persistent storage for StudyLoop.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite. A single connection keeps the
	// pragmas below in effect for every statement.
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// User profiles. xp/level/streak are mutated only through the
		// rules engine; session_count and completed_task_count are
		// incrementally maintained counters so badge evaluation never
		// re-scans the ledger.
		`CREATE TABLE IF NOT EXISTS users (
			id                   TEXT PRIMARY KEY,
			email                TEXT NOT NULL UNIQUE,
			display_name         TEXT NOT NULL,
			password_hash        TEXT NOT NULL,
			xp                   INTEGER NOT NULL DEFAULT 0,
			level                TEXT NOT NULL DEFAULT 'novice',
			streak               INTEGER NOT NULL DEFAULT 0,
			last_active_at       INTEGER,
			session_count        INTEGER NOT NULL DEFAULT 0,
			completed_task_count INTEGER NOT NULL DEFAULT 0,
			created_at           INTEGER NOT NULL
		)`,

		// Append-only activity ledger. Rows are never updated or deleted
		// except by the account-deletion cascade.
		`CREATE TABLE IF NOT EXISTS activity_ledger (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			kind             TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			task_id          TEXT NOT NULL DEFAULT '',
			xp_earned        INTEGER NOT NULL,
			completed_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON activity_ledger(user_id, completed_at)`,

		// Study tasks. xp_reward is fixed at creation.
		`CREATE TABLE IF NOT EXISTS tasks (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title        TEXT NOT NULL,
			xp_reward    INTEGER NOT NULL,
			completed    BOOLEAN NOT NULL DEFAULT 0,
			completed_at INTEGER,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, completed)`,

		// Badge unlocks. The primary key enforces at most one unlock per
		// (user, badge) pair; unlocking uses INSERT OR IGNORE.
		`CREATE TABLE IF NOT EXISTS user_badges (
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			badge_id    TEXT NOT NULL,
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, badge_id)
		)`,

		// Offline sync queue. client_ref deduplicates retransmissions of
		// the same offline event.
		`CREATE TABLE IF NOT EXISTS sync_queue (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			client_ref  TEXT NOT NULL,
			kind        TEXT NOT NULL,
			payload     TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'pending',
			error       TEXT NOT NULL DEFAULT '',
			enqueued_at INTEGER NOT NULL,
			UNIQUE (user_id, client_ref)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_status ON sync_queue(status, enqueued_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timeFromNullable(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.Unix(v.Int64, 0).UTC()
}
