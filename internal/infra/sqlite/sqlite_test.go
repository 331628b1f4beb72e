package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studyloop/studyloop/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUser(t *testing.T, db *DB, email string) domain.UserProfile {
	t.Helper()
	p := domain.UserProfile{
		ID:          "user-" + email,
		Email:       email,
		DisplayName: "Tester",
		Level:       domain.LevelNovice,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.CreateUser(p, "hash"); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	return p
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "state.db")); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() error: %v", err)
	}
	db.Close()

	// Reopening runs migrations again against existing tables.
	db, err = Open(dir)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	db.Close()
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestCreateUser_And_Profile(t *testing.T) {
	db := newTestDB(t)
	created := newTestUser(t, db, "ada@example.com")

	p, err := db.Profile(created.ID)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if p.Email != "ada@example.com" || p.XP != 0 || p.Level != domain.LevelNovice {
		t.Errorf("profile: %+v", p)
	}
	if !p.LastActiveAt.IsZero() {
		t.Errorf("fresh user should have zero LastActiveAt, got %v", p.LastActiveAt)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	newTestUser(t, db, "ada@example.com")

	dup := domain.UserProfile{
		ID: "other-id", Email: "ada@example.com", DisplayName: "Dup",
		Level: domain.LevelNovice, CreatedAt: time.Now().UTC(),
	}
	if err := db.CreateUser(dup, "hash"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}
}

func TestProfile_NotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Profile("nobody"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("got %v, want ErrProfileNotFound", err)
	}
}

func TestProfileByEmail(t *testing.T) {
	db := newTestDB(t)
	created := newTestUser(t, db, "bea@example.com")

	p, hash, err := db.ProfileByEmail("bea@example.com")
	if err != nil {
		t.Fatalf("ProfileByEmail() error: %v", err)
	}
	if p.ID != created.ID || hash != "hash" {
		t.Errorf("got id=%s hash=%s", p.ID, hash)
	}

	if _, _, err := db.ProfileByEmail("nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

// ─── ApplyAward ─────────────────────────────────────────────────────────────

func award(user domain.UserProfile, xp int64, badges ...string) domain.AwardApply {
	now := time.Now().UTC()
	next := user
	next.XP = user.XP + xp
	next.Streak = 1
	next.LastActiveAt = now
	next.SessionCount++
	return domain.AwardApply{
		Profile:    next,
		ExpectedXP: user.XP,
		Record: domain.ActivityRecord{
			ID: "rec-" + now.Format("150405.000000000"), UserID: user.ID,
			Kind: domain.ActivityFocusSession, DurationMinutes: 25,
			XPEarned: xp, CompletedAt: now,
		},
		CandidateBadges: badges,
	}
}

func TestApplyAward_PersistsAllEffects(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "cid@example.com")

	newBadges, err := db.ApplyAward(award(user, 50, "first_focus"))
	if err != nil {
		t.Fatalf("ApplyAward() error: %v", err)
	}
	if len(newBadges) != 1 || newBadges[0] != "first_focus" {
		t.Errorf("newBadges: %v", newBadges)
	}

	p, _ := db.Profile(user.ID)
	if p.XP != 50 || p.Streak != 1 || p.SessionCount != 1 {
		t.Errorf("profile after award: %+v", p)
	}

	history, _ := db.History(user.ID, 10)
	if len(history) != 1 || history[0].XPEarned != 50 {
		t.Errorf("history: %+v", history)
	}

	unlocked, _ := db.UnlockedBadgeIDs(user.ID)
	if !unlocked["first_focus"] {
		t.Errorf("unlocked: %v", unlocked)
	}
}

func TestApplyAward_StaleExpectedXP(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "dot@example.com")

	if _, err := db.ApplyAward(award(user, 50)); err != nil {
		t.Fatalf("first award: %v", err)
	}

	// Second award still computed from the pre-award profile: conflict.
	if _, err := db.ApplyAward(award(user, 50)); !errors.Is(err, domain.ErrPersistenceConflict) {
		t.Errorf("got %v, want ErrPersistenceConflict", err)
	}

	// XP unchanged by the failed attempt.
	p, _ := db.Profile(user.ID)
	if p.XP != 50 {
		t.Errorf("xp = %d, want 50", p.XP)
	}
}

func TestApplyAward_MissingProfile(t *testing.T) {
	db := newTestDB(t)
	ghost := domain.UserProfile{ID: "ghost", Level: domain.LevelNovice}

	if _, err := db.ApplyAward(award(ghost, 50)); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("got %v, want ErrProfileNotFound", err)
	}
}

func TestApplyAward_BadgeUnlockIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "eve@example.com")

	if _, err := db.ApplyAward(award(user, 50, "first_focus")); err != nil {
		t.Fatalf("first award: %v", err)
	}

	// Re-offering the same badge reports nothing new.
	user.XP = 50
	user.SessionCount = 1
	newBadges, err := db.ApplyAward(award(user, 50, "first_focus", "rising_star"))
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if len(newBadges) != 1 || newBadges[0] != "rising_star" {
		t.Errorf("newBadges: %v", newBadges)
	}

	if count, _ := db.BadgeUnlockCount(user.ID); count != 2 {
		t.Errorf("unlock count = %d, want 2", count)
	}
}

func TestApplyAward_TaskCompletionExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "fay@example.com")

	task := domain.Task{
		ID: "task-1", UserID: user.ID, Title: "review notes",
		XPReward: 60, CreatedAt: time.Now().UTC(),
	}
	if err := db.CreateTask(task); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}

	a := award(user, 60)
	a.Record.Kind = domain.ActivityTaskCompleted
	a.Record.TaskID = task.ID
	a.CompleteTaskID = task.ID
	if _, err := db.ApplyAward(a); err != nil {
		t.Fatalf("first completion: %v", err)
	}

	// Stored task is now completed.
	got, _ := db.Task(task.ID)
	if !got.Completed || got.CompletedAt.IsZero() {
		t.Errorf("task after completion: %+v", got)
	}

	// Replaying against the updated profile still fails on the task guard,
	// and the failed tx must not double-credit XP.
	b := award(*mustProfile(t, db, user.ID), 60)
	b.Record.Kind = domain.ActivityTaskCompleted
	b.Record.TaskID = task.ID
	b.CompleteTaskID = task.ID
	if _, err := db.ApplyAward(b); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Errorf("got %v, want ErrAlreadyCompleted", err)
	}
	p, _ := db.Profile(user.ID)
	if p.XP != 60 {
		t.Errorf("xp = %d, want 60", p.XP)
	}
}

func mustProfile(t *testing.T, db *DB, id string) *domain.UserProfile {
	t.Helper()
	p, err := db.Profile(id)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	return p
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func TestListTasks_OpenFirst(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "gil@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	for i, task := range []domain.Task{
		{ID: "t1", UserID: user.ID, Title: "done", XPReward: 10, Completed: true, CompletedAt: base},
		{ID: "t2", UserID: user.ID, Title: "open", XPReward: 10},
	} {
		task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.CreateTask(task); err != nil {
			t.Fatalf("CreateTask() error: %v", err)
		}
	}

	tasks, err := db.ListTasks(user.ID)
	if err != nil {
		t.Fatalf("ListTasks() error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t2" {
		t.Errorf("tasks: %+v", tasks)
	}
}

// ─── Leaderboard ────────────────────────────────────────────────────────────

func TestTopByXPSince_WindowsLedger(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "hal@example.com")

	// One old entry outside the window, one fresh inside.
	old := award(user, 100)
	old.Record.ID = "old"
	old.Record.CompletedAt = time.Now().UTC().AddDate(0, 0, -10)
	if _, err := db.ApplyAward(old); err != nil {
		t.Fatalf("old award: %v", err)
	}
	fresh := award(*mustProfile(t, db, user.ID), 50)
	fresh.Record.ID = "fresh"
	if _, err := db.ApplyAward(fresh); err != nil {
		t.Fatalf("fresh award: %v", err)
	}

	rows, err := db.TopByXPSince(time.Now().UTC().AddDate(0, 0, -7), 10)
	if err != nil {
		t.Fatalf("TopByXPSince() error: %v", err)
	}
	if len(rows) != 1 || rows[0].XP != 50 {
		t.Errorf("rows: %+v", rows)
	}

	all, err := db.TopByXP(10)
	if err != nil {
		t.Fatalf("TopByXP() error: %v", err)
	}
	if len(all) != 1 || all[0].XP != 150 {
		t.Errorf("all-time rows: %+v", all)
	}
}

// ─── Sync Queue ─────────────────────────────────────────────────────────────

func TestEnqueueSync_DeduplicatesClientRef(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "ivy@example.com")

	entry := SyncEntry{
		ID: "s1", UserID: user.ID, ClientRef: "ref-1",
		Kind: "focus_session", Payload: `{"duration_minutes":25}`,
		EnqueuedAt: time.Now().UTC(),
	}
	inserted, err := db.EnqueueSync(entry)
	if err != nil || !inserted {
		t.Fatalf("first enqueue: inserted=%v err=%v", inserted, err)
	}

	entry.ID = "s2"
	inserted, err = db.EnqueueSync(entry)
	if err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if inserted {
		t.Error("duplicate client_ref should not insert")
	}

	if count, _ := db.PendingSyncCount(); count != 1 {
		t.Errorf("pending = %d, want 1", count)
	}
}

func TestResolveSyncEntry(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "joy@example.com")

	entry := SyncEntry{
		ID: "s1", UserID: user.ID, ClientRef: "ref-1",
		Kind: "focus_session", Payload: `{}`,
		EnqueuedAt: time.Now().UTC(),
	}
	if _, err := db.EnqueueSync(entry); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := db.ResolveSyncEntry("s1", SyncRejected, "bad duration"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	pending, _ := db.PendingSyncEntries(10)
	if len(pending) != 0 {
		t.Errorf("still pending: %+v", pending)
	}
}

// ─── Account Deletion ───────────────────────────────────────────────────────

func TestDeleteUser_Cascades(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "kim@example.com")

	if _, err := db.ApplyAward(award(user, 50, "first_focus")); err != nil {
		t.Fatalf("award: %v", err)
	}
	if err := db.DeleteUser(user.ID); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}

	if _, err := db.Profile(user.ID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("profile should be gone, got %v", err)
	}
	history, _ := db.History(user.ID, 10)
	if len(history) != 0 {
		t.Errorf("ledger rows should cascade: %+v", history)
	}
	if count, _ := db.BadgeUnlockCount(user.ID); count != 0 {
		t.Errorf("badge rows should cascade: %d", count)
	}

	if err := db.DeleteUser(user.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("second delete: got %v, want ErrUserNotFound", err)
	}
}
