package domain

// AwardApply carries the full post-award state computed by the rules engine
// for the storage adapter to persist as one atomic unit: the profile update,
// the ledger append, the optional task completion, and the badge unlocks
// either all land or none do.
type AwardApply struct {
	Profile         UserProfile    // post-award profile state
	ExpectedXP      int64          // pre-award XP, optimistic guard
	Record          ActivityRecord // ledger entry to append
	CompleteTaskID  string         // non-empty for task awards
	CandidateBadges []string       // badge ids that qualify on post-award stats
}
