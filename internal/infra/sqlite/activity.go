package sqlite

import (
	"time"

	"github.com/studyloop/studyloop/internal/domain"
)

// ─── Activity Ledger ────────────────────────────────────────────────────────
// The ledger is append-only: entries are written inside ApplyAward and read
// back only for history views and weekly leaderboard sums.

// History returns a user's most recent ledger entries, newest first.
func (d *DB) History(userID string, limit int) ([]domain.ActivityRecord, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, kind, duration_minutes, task_id, xp_earned, completed_at
		 FROM activity_ledger WHERE user_id = ? ORDER BY completed_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ActivityRecord
	for rows.Next() {
		var r domain.ActivityRecord
		var kind string
		var completedAt int64
		if err := rows.Scan(&r.ID, &r.UserID, &kind, &r.DurationMinutes, &r.TaskID, &r.XPEarned, &completedAt); err != nil {
			return nil, err
		}
		r.Kind = domain.ActivityKind(kind)
		r.CompletedAt = time.Unix(completedAt, 0).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// LedgerXPSince sums XP earned by a user from entries at or after the cutoff.
func (d *DB) LedgerXPSince(userID string, since time.Time) (int64, error) {
	var total int64
	err := d.db.QueryRow(
		`SELECT COALESCE(SUM(xp_earned), 0) FROM activity_ledger WHERE user_id = ? AND completed_at >= ?`,
		userID, since.Unix(),
	).Scan(&total)
	return total, err
}
