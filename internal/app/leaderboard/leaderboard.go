// Package leaderboard ranks users by XP, all-time or over a trailing window.
package leaderboard

import (
	"fmt"
	"time"

	"github.com/studyloop/studyloop/internal/infra/sqlite"
)

// Period selects the ranking window.
type Period string

const (
	PeriodAll  Period = "all"
	PeriodWeek Period = "week"
)

// DefaultLimit caps leaderboard size when the caller passes limit <= 0.
const DefaultLimit = 20

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	XP          int64  `json:"xp"`
	Level       string `json:"level"`
	Streak      int    `json:"streak"`
}

// Service serves ranked XP standings.
type Service struct {
	db  *sqlite.DB
	now func() time.Time
}

// NewService creates a leaderboard service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Top returns the ranked standings for a period. Weekly rankings sum ledger
// XP over the trailing 7 days; all-time rankings read the profile totals.
func (s *Service) Top(period Period, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var rows []sqlite.LeaderboardRow
	var err error
	switch period {
	case PeriodAll, "":
		rows, err = s.db.TopByXP(limit)
	case PeriodWeek:
		cutoff := s.now().UTC().AddDate(0, 0, -7)
		rows, err = s.db.TopByXPSince(cutoff, limit)
	default:
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}
	if err != nil {
		return nil, fmt.Errorf("leaderboard %s: %w", period, err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, Entry{
			Rank:        i + 1,
			UserID:      r.UserID,
			DisplayName: r.DisplayName,
			XP:          r.XP,
			Level:       string(r.Level),
			Streak:      r.Streak,
		})
	}
	return entries, nil
}
