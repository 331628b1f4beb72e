package domain

import "time"

// BadgeDef defines a single badge in the fixed catalog: a stable identifier
// plus a predicate over aggregate user stats.
type BadgeDef struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Predicate   func(UserStats) bool `json:"-"`
}

// UnlockedBadge records when a user earned a badge. At most one record
// exists per (user, badge) pair — unlocking is idempotent.
type UnlockedBadge struct {
	UserID     string    `json:"user_id"`
	BadgeID    string    `json:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
