package sqlite

import (
	"time"

	"github.com/studyloop/studyloop/internal/domain"
)

// ─── Badge Unlocks ──────────────────────────────────────────────────────────
// Unlock rows are inserted inside ApplyAward; this file is read-side only.

// UnlockedBadgeIDs returns the set of badge ids a user has already earned.
func (d *DB) UnlockedBadgeIDs(userID string) (map[string]bool, error) {
	rows, err := d.db.Query(`SELECT badge_id FROM user_badges WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}

// ListUnlockedBadges returns a user's badge unlocks, newest first.
func (d *DB) ListUnlockedBadges(userID string) ([]domain.UnlockedBadge, error) {
	rows, err := d.db.Query(
		`SELECT user_id, badge_id, unlocked_at FROM user_badges
		 WHERE user_id = ? ORDER BY unlocked_at DESC, badge_id ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.UnlockedBadge
	for rows.Next() {
		var b domain.UnlockedBadge
		var unlockedAt int64
		if err := rows.Scan(&b.UserID, &b.BadgeID, &unlockedAt); err != nil {
			return nil, err
		}
		b.UnlockedAt = time.Unix(unlockedAt, 0).UTC()
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// BadgeUnlockCount returns how many badges a user has unlocked.
func (d *DB) BadgeUnlockCount(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM user_badges WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}
