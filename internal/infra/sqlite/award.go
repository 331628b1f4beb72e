package sqlite

import (
	"fmt"

	"github.com/studyloop/studyloop/internal/domain"
)

// ApplyAward atomically persists one XP award as a single transaction.
// Returns the badge ids whose unlock rows were actually inserted — under a
// concurrent race only one writer wins each (user, badge) pair.
//
// Errors: domain.ErrAlreadyCompleted if the task was completed by another
// writer first; domain.ErrPersistenceConflict if the profile changed since
// ExpectedXP was read (caller retries the whole award from a fresh read).
func (d *DB) ApplyAward(a domain.AwardApply) ([]string, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin award tx: %w", err)
	}
	defer tx.Rollback()

	// Exactly-once task completion guard.
	if a.CompleteTaskID != "" {
		result, err := tx.Exec(
			`UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ? AND completed = 0`,
			a.Record.CompletedAt.Unix(), a.CompleteTaskID,
		)
		if err != nil {
			return nil, fmt.Errorf("complete task: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return nil, domain.ErrAlreadyCompleted
		}
	}

	// Optimistic profile write: the WHERE xp = ? guard detects a concurrent
	// award that landed between the caller's read and this write.
	p := a.Profile
	result, err := tx.Exec(
		`UPDATE users SET xp = ?, level = ?, streak = ?, last_active_at = ?, session_count = ?, completed_task_count = ?
		 WHERE id = ? AND xp = ?`,
		p.XP, string(p.Level), p.Streak, nullableUnix(p.LastActiveAt),
		p.SessionCount, p.CompletedTaskCount,
		p.ID, a.ExpectedXP,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM users WHERE id = ?`, p.ID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, domain.ErrProfileNotFound
		}
		return nil, domain.ErrPersistenceConflict
	}

	// Append the immutable ledger record.
	r := a.Record
	_, err = tx.Exec(
		`INSERT INTO activity_ledger (id, user_id, kind, duration_minutes, task_id, xp_earned, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, string(r.Kind), r.DurationMinutes, r.TaskID, r.XPEarned, r.CompletedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}

	// Conditional badge unlocks: INSERT OR IGNORE guarantees at most one
	// row per (user, badge) pair even when two evaluations race.
	var newlyUnlocked []string
	for _, badgeID := range a.CandidateBadges {
		result, err := tx.Exec(
			`INSERT OR IGNORE INTO user_badges (user_id, badge_id, unlocked_at) VALUES (?, ?, ?)`,
			p.ID, badgeID, r.CompletedAt.Unix(),
		)
		if err != nil {
			return nil, fmt.Errorf("unlock badge %s: %w", badgeID, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			newlyUnlocked = append(newlyUnlocked, badgeID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit award tx: %w", err)
	}
	return newlyUnlocked, nil
}
