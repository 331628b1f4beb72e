package rules

import "time"

// Streaks count consecutive active calendar days. Day boundaries are
// midnight UTC on both call sites — a canonical policy, so client-local and
// server evaluation can never disagree near midnight.

// UpdateStreak computes the new streak given the previous activity timestamp.
//   - same UTC day as now: streak unchanged (already credited; idempotent)
//   - previous UTC day: streak + 1
//   - gap of 2+ days (or no prior activity beyond one day back): reset to 1
func UpdateStreak(lastActiveAt time.Time, currentStreak int, now time.Time) int {
	if lastActiveAt.IsZero() {
		return 1
	}

	lastDay := dayUTC(lastActiveAt)
	today := dayUTC(now)

	switch {
	case lastDay.Equal(today):
		return currentStreak
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return currentStreak + 1
	default:
		return 1
	}
}

// ActiveToday reports whether the user has already been credited for the
// current UTC day. Callers gate on this before mutating last-active state.
func ActiveToday(lastActiveAt time.Time, now time.Time) bool {
	return !lastActiveAt.IsZero() && dayUTC(lastActiveAt).Equal(dayUTC(now))
}

// dayUTC truncates a timestamp to its midnight-aligned UTC calendar day.
func dayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
