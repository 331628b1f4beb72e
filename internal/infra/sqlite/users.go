package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"github.com/studyloop/studyloop/internal/domain"
)

// ─── User Repository ────────────────────────────────────────────────────────

// CreateUser inserts a new user with zeroed gamification state.
func (d *DB) CreateUser(p domain.UserProfile, passwordHash string) error {
	_, err := d.db.Exec(
		`INSERT INTO users (id, email, display_name, password_hash, xp, level, streak, last_active_at, session_count, completed_task_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.DisplayName, passwordHash,
		p.XP, string(p.Level), p.Streak, nullableUnix(p.LastActiveAt),
		p.SessionCount, p.CompletedTaskCount, p.CreatedAt.Unix(),
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

// Profile retrieves a user's gamification profile by id.
// Returns domain.ErrProfileNotFound if the user does not exist.
func (d *DB) Profile(userID string) (*domain.UserProfile, error) {
	row := d.db.QueryRow(
		`SELECT id, email, display_name, xp, level, streak, last_active_at, session_count, completed_task_count, created_at
		 FROM users WHERE id = ?`, userID,
	)
	p, err := scanProfile(row)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

// ProfileByEmail retrieves a profile plus its password hash for login.
func (d *DB) ProfileByEmail(email string) (*domain.UserProfile, string, error) {
	row := d.db.QueryRow(
		`SELECT id, email, display_name, xp, level, streak, last_active_at, session_count, completed_task_count, created_at, password_hash
		 FROM users WHERE email = ?`, email,
	)
	var p domain.UserProfile
	var level string
	var lastActive sql.NullInt64
	var createdAt int64
	var hash string
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.XP, &level, &p.Streak,
		&lastActive, &p.SessionCount, &p.CompletedTaskCount, &createdAt, &hash)
	if err == sql.ErrNoRows {
		return nil, "", domain.ErrUserNotFound
	}
	if err != nil {
		return nil, "", err
	}
	p.Level = domain.Level(level)
	p.LastActiveAt = timeFromNullable(lastActive)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, hash, nil
}

// DeleteUser removes a user. Ledger, task, badge, and sync rows cascade.
func (d *DB) DeleteUser(userID string) error {
	result, err := d.db.Exec(`DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanProfile(s scanner) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var level string
	var lastActive sql.NullInt64
	var createdAt int64

	err := s.Scan(&p.ID, &p.Email, &p.DisplayName, &p.XP, &level, &p.Streak,
		&lastActive, &p.SessionCount, &p.CompletedTaskCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	p.Level = domain.Level(level)
	p.LastActiveAt = timeFromNullable(lastActive)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
// modernc.org/sqlite surfaces constraint failures in the error text; there is
// no exported error type to unwrap.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
