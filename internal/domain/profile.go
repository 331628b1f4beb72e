// Package domain holds the pure types of the StudyLoop rules engine.
// No infrastructure imports — every type here can be constructed in tests
// without a database.
package domain

import "time"

// Level is the three-tier classification derived purely from XP.
type Level string

const (
	LevelNovice  Level = "novice"
	LevelScholar Level = "scholar"
	LevelMaster  Level = "master"
)

// UserProfile is the mutable per-user gamification state.
// XP is monotonically non-decreasing; Level is always a function of XP.
// SessionCount and CompletedTaskCount are maintained incrementally alongside
// XP so badge checks never re-scan the activity ledger.
type UserProfile struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	DisplayName        string    `json:"display_name"`
	XP                 int64     `json:"xp"`
	Level              Level     `json:"level"`
	Streak             int       `json:"streak"`
	LastActiveAt       time.Time `json:"last_active_at"`
	SessionCount       int64     `json:"session_count"`
	CompletedTaskCount int64     `json:"completed_task_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// Stats returns the aggregate snapshot fed to badge predicates.
func (p UserProfile) Stats() UserStats {
	return UserStats{
		XP:                 p.XP,
		Level:              p.Level,
		Streak:             p.Streak,
		SessionCount:       p.SessionCount,
		CompletedTaskCount: p.CompletedTaskCount,
	}
}

// UserStats is a snapshot of aggregate user state fed to badge predicates.
type UserStats struct {
	XP                 int64 `json:"xp"`
	Level              Level `json:"level"`
	Streak             int   `json:"streak"`
	SessionCount       int64 `json:"session_count"`
	CompletedTaskCount int64 `json:"completed_task_count"`
}

// AwardResult is returned from every XP-granting operation. The caller uses
// it for celebration UI only — persisted state is the source of truth.
type AwardResult struct {
	NewXP     int64    `json:"new_xp"`
	NewLevel  Level    `json:"new_level"`
	LeveledUp bool     `json:"leveled_up"`
	NewStreak int      `json:"new_streak"`
	XPAwarded int64    `json:"xp_awarded"`
	NewBadges []string `json:"new_badges"`
}
