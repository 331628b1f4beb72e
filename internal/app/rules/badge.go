package rules

import "github.com/studyloop/studyloop/internal/domain"

// Catalog returns the fixed badge catalog. Identifiers are stable —
// clients and unlock records reference them by id.
func Catalog() []domain.BadgeDef {
	return []domain.BadgeDef{
		{
			ID: "first_focus", Name: "First Focus",
			Description: "Complete your first focus session",
			Predicate:   func(s domain.UserStats) bool { return s.SessionCount >= 1 },
		},
		{
			ID: "dedicated_learner", Name: "Dedicated Learner",
			Description: "Keep a 7-day study streak",
			Predicate:   func(s domain.UserStats) bool { return s.Streak >= 7 },
		},
		{
			ID: "task_master", Name: "Task Master",
			Description: "Complete 10 study tasks",
			Predicate:   func(s domain.UserStats) bool { return s.CompletedTaskCount >= 10 },
		},
		{
			ID: "rising_star", Name: "Rising Star",
			Description: "Earn 500 XP",
			Predicate:   func(s domain.UserStats) bool { return s.XP >= 500 },
		},
		{
			ID: "focus_champion", Name: "Focus Champion",
			Description: "Complete 25 focus sessions",
			Predicate:   func(s domain.UserStats) bool { return s.SessionCount >= 25 },
		},
		{
			ID: "consistency_king", Name: "Consistency King",
			Description: "Keep a 30-day study streak",
			Predicate:   func(s domain.UserStats) bool { return s.Streak >= 30 },
		},
		{
			ID: "xp_collector", Name: "XP Collector",
			Description: "Earn 2000 XP",
			Predicate:   func(s domain.UserStats) bool { return s.XP >= 2000 },
		},
		{
			ID: "master_learner", Name: "Master Learner",
			Description: "Reach the Master tier",
			Predicate:   func(s domain.UserStats) bool { return s.Level == domain.LevelMaster },
		},
	}
}

// BadgeByID looks up a catalog entry. Returns nil for unknown ids.
func BadgeByID(id string) *domain.BadgeDef {
	for _, def := range Catalog() {
		if def.ID == id {
			return &def
		}
	}
	return nil
}

// EvaluateBadges returns the ids of badges whose conditions hold on stats and
// which are not yet in alreadyUnlocked. A single pass never emits the same id
// twice, and calling again with the emitted ids added to alreadyUnlocked
// yields nothing — evaluation is idempotent.
func EvaluateBadges(stats domain.UserStats, alreadyUnlocked map[string]bool) []string {
	var newlyQualified []string
	emitted := make(map[string]bool)
	for _, def := range Catalog() {
		if alreadyUnlocked[def.ID] || emitted[def.ID] {
			continue
		}
		if def.Predicate != nil && def.Predicate(stats) {
			newlyQualified = append(newlyQualified, def.ID)
			emitted[def.ID] = true
		}
	}
	return newlyQualified
}
