package sqlite

import (
	"database/sql"
	"time"

	"github.com/studyloop/studyloop/internal/domain"
)

// ─── Leaderboard Queries ────────────────────────────────────────────────────

// LeaderboardRow is one ranked entry. Rank is filled in by the caller.
type LeaderboardRow struct {
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name"`
	XP          int64        `json:"xp"`
	Level       domain.Level `json:"level"`
	Streak      int          `json:"streak"`
}

// TopByXP returns users ranked by all-time XP, highest first.
func (d *DB) TopByXP(limit int) ([]LeaderboardRow, error) {
	rows, err := d.db.Query(
		`SELECT id, display_name, xp, level, streak FROM users
		 ORDER BY xp DESC, created_at ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

// TopByXPSince ranks users by XP earned from ledger entries at or after the
// cutoff. Users with no activity in the window are omitted.
func (d *DB) TopByXPSince(since time.Time, limit int) ([]LeaderboardRow, error) {
	rows, err := d.db.Query(
		`SELECT u.id, u.display_name, COALESCE(SUM(l.xp_earned), 0) AS earned, u.level, u.streak
		 FROM users u
		 JOIN activity_ledger l ON l.user_id = u.id AND l.completed_at >= ?
		 GROUP BY u.id
		 ORDER BY earned DESC, u.created_at ASC LIMIT ?`,
		since.Unix(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

func scanLeaderboard(rows *sql.Rows) ([]LeaderboardRow, error) {
	var entries []LeaderboardRow
	for rows.Next() {
		var e LeaderboardRow
		var level string
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.XP, &level, &e.Streak); err != nil {
			return nil, err
		}
		e.Level = domain.Level(level)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
