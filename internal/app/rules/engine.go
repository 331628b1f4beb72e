// Package rules implements the StudyLoop gamification rules engine.
// Level thresholds, session rewards, streak arithmetic, and the badge
// catalog are pure functions; Engine orchestrates them into atomic awards.
// Design rule: the server computes every reward — clients report events,
// never XP amounts.
package rules

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/infra/metrics"
)

// Store is the persistence surface the engine needs. *sqlite.DB satisfies it;
// tests substitute in-memory fakes to exercise conflict paths.
type Store interface {
	Profile(userID string) (*domain.UserProfile, error)
	Task(taskID string) (*domain.Task, error)
	UnlockedBadgeIDs(userID string) (map[string]bool, error)
	ApplyAward(a domain.AwardApply) ([]string, error)
}

// awardAttempts bounds the optimistic-conflict retry loop. The per-user lock
// makes conflicts rare within one process; retries cover external writers.
const awardAttempts = 3

// Engine applies XP awards. All mutations for one user are serialized through
// a per-user lock so concurrent session reports and task completions cannot
// interleave their read-compute-write cycles.
type Engine struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a rules engine on top of a store.
func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing awards for one user.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// CompleteSession validates a focus session and awards its fixed XP.
// Invalid durations are rejected before any state is touched.
func (e *Engine) CompleteSession(userID string, durationMinutes int) (*domain.AwardResult, error) {
	xp, err := XPForSession(durationMinutes)
	if err != nil {
		metrics.SessionsRejected.Inc()
		return nil, err
	}

	rec := domain.ActivityRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		Kind:            domain.ActivityFocusSession,
		DurationMinutes: durationMinutes,
		XPEarned:        xp,
		CompletedAt:     e.now().UTC(),
	}
	result, err := e.award(userID, xp, rec)
	if err == nil {
		metrics.SessionsCompleted.WithLabelValues(strconv.Itoa(durationMinutes)).Inc()
	}
	return result, err
}

// CompleteTask completes a task exactly once and awards its stored reward.
// The reward is read from the task row — client-supplied values are ignored.
// Returns domain.ErrForbidden when the task belongs to another user and
// domain.ErrAlreadyCompleted on repeat completion.
func (e *Engine) CompleteTask(userID, taskID string) (*domain.AwardResult, error) {
	task, err := e.store.Task(taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			metrics.TasksRejected.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}
	if task.UserID != userID {
		metrics.TasksRejected.WithLabelValues("forbidden").Inc()
		return nil, domain.ErrForbidden
	}
	if task.Completed {
		metrics.TasksRejected.WithLabelValues("already_completed").Inc()
		return nil, domain.ErrAlreadyCompleted
	}

	rec := domain.ActivityRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        domain.ActivityTaskCompleted,
		TaskID:      taskID,
		XPEarned:    task.XPReward,
		CompletedAt: e.now().UTC(),
	}
	result, err := e.award(userID, task.XPReward, rec)
	switch {
	case err == nil:
		metrics.TasksCompleted.Inc()
	case errors.Is(err, domain.ErrAlreadyCompleted):
		// Lost the completion race to a concurrent writer.
		metrics.TasksRejected.WithLabelValues("already_completed").Inc()
	}
	return result, err
}

// award runs the full read-compute-write cycle under the user's lock,
// retrying from a fresh read when the store reports a write conflict.
func (e *Engine) award(userID string, amount int64, rec domain.ActivityRecord) (*domain.AwardResult, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < awardAttempts; attempt++ {
		result, err := e.awardOnce(userID, amount, rec)
		if errors.Is(err, domain.ErrPersistenceConflict) {
			metrics.AwardConflicts.Inc()
			lastErr = err
			continue
		}
		return result, err
	}
	return nil, fmt.Errorf("award after %d attempts: %w", awardAttempts, lastErr)
}

// awardOnce computes the complete post-award state and hands it to the store
// as one atomic unit. Either every effect lands — XP, level, streak, counters,
// ledger record, task completion, badge unlocks — or none does.
func (e *Engine) awardOnce(userID string, amount int64, rec domain.ActivityRecord) (*domain.AwardResult, error) {
	profile, err := e.store.Profile(userID)
	if err != nil {
		return nil, err
	}

	now := rec.CompletedAt
	oldLevel := profile.Level
	expectedXP := profile.XP

	next := *profile
	next.XP += amount
	next.Level = LevelForXP(next.XP)
	next.Streak = UpdateStreak(profile.LastActiveAt, profile.Streak, now)
	next.LastActiveAt = now
	switch rec.Kind {
	case domain.ActivityFocusSession:
		next.SessionCount++
	case domain.ActivityTaskCompleted:
		next.CompletedTaskCount++
	}

	unlocked, err := e.store.UnlockedBadgeIDs(userID)
	if err != nil {
		return nil, err
	}
	candidates := EvaluateBadges(next.Stats(), unlocked)

	apply := domain.AwardApply{
		Profile:         next,
		ExpectedXP:      expectedXP,
		Record:          rec,
		CandidateBadges: candidates,
	}
	if rec.Kind == domain.ActivityTaskCompleted {
		apply.CompleteTaskID = rec.TaskID
	}

	newBadges, err := e.store.ApplyAward(apply)
	if err != nil {
		return nil, err
	}

	metrics.XPAwarded.WithLabelValues(string(rec.Kind)).Add(float64(amount))
	if next.Level != oldLevel {
		metrics.LevelUps.WithLabelValues(string(next.Level)).Inc()
	}
	for _, id := range newBadges {
		metrics.BadgesUnlocked.WithLabelValues(id).Inc()
	}

	return &domain.AwardResult{
		NewXP:     next.XP,
		NewLevel:  next.Level,
		LeveledUp: next.Level != oldLevel,
		NewStreak: next.Streak,
		XPAwarded: amount,
		NewBadges: newBadges,
	}, nil
}
