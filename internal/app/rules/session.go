package rules

import "github.com/studyloop/studyloop/internal/domain"

// Valid Pomodoro durations and their fixed XP rewards. Only these two
// durations exist; anything else is rejected before any state mutation so a
// client can never request an arbitrary XP grant.
const (
	ShortSessionMinutes = 25
	LongSessionMinutes  = 50

	ShortSessionXP int64 = 50
	LongSessionXP  int64 = 100
)

// XPForSession returns the XP reward for a session duration.
// Returns domain.ErrInvalidDuration for anything outside the fixed set.
func XPForSession(durationMinutes int) (int64, error) {
	switch durationMinutes {
	case ShortSessionMinutes:
		return ShortSessionXP, nil
	case LongSessionMinutes:
		return LongSessionXP, nil
	default:
		return 0, domain.ErrInvalidDuration
	}
}
