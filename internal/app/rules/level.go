package rules

import "github.com/studyloop/studyloop/internal/domain"

// XP thresholds for the three level tiers. Boundary values belong to the
// higher tier: exactly 500 XP is Scholar, exactly 2000 XP is Master.
const (
	ScholarXP int64 = 500
	MasterXP  int64 = 2000
)

// LevelForXP returns the level tier for a given XP amount.
// Pure, total function — level is always derived from XP, never stored
// independently of it.
func LevelForXP(xp int64) domain.Level {
	switch {
	case xp >= MasterXP:
		return domain.LevelMaster
	case xp >= ScholarXP:
		return domain.LevelScholar
	default:
		return domain.LevelNovice
	}
}

// XPToNextLevel returns XP remaining until the next tier, or 0 at Master.
func XPToNextLevel(xp int64) int64 {
	switch {
	case xp >= MasterXP:
		return 0
	case xp >= ScholarXP:
		return MasterXP - xp
	default:
		return ScholarXP - xp
	}
}
