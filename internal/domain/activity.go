package domain

import "time"

// ActivityKind distinguishes the two ledger record variants.
type ActivityKind string

const (
	ActivityFocusSession  ActivityKind = "focus_session"
	ActivityTaskCompleted ActivityKind = "task_completed"
)

// ActivityRecord is one immutable entry in the append-only activity ledger.
// FocusSession records carry DurationMinutes; TaskCompleted records carry
// TaskID. Both carry the XP that was granted at the time of the event.
type ActivityRecord struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Kind            ActivityKind `json:"kind"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
	TaskID          string       `json:"task_id,omitempty"`
	XPEarned        int64        `json:"xp_earned"`
	CompletedAt     time.Time    `json:"completed_at"`
}

// Task is a study task. XPReward is fixed at creation time — completion
// always reads the reward from the stored row, never from client input.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	XPReward    int64     `json:"xp_reward"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
}
