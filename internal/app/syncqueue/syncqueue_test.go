package syncqueue_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/app/rules"
	"github.com/studyloop/studyloop/internal/app/syncqueue"
	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/infra/sqlite"
)

func testService(t *testing.T) (*syncqueue.Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return syncqueue.NewService(db, rules.NewEngine(db)), db
}

func seedUser(t *testing.T, db *sqlite.DB) string {
	t.Helper()
	id := uuid.NewString()
	err := db.CreateUser(domain.UserProfile{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: "Test User",
		Level:       domain.LevelNovice,
		CreatedAt:   time.Now().UTC(),
	}, "hash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func TestSubmit_AppliesThroughEngine(t *testing.T) {
	svc, db := testService(t)
	userID := seedUser(t, db)

	receipts, err := svc.Submit(userID, []syncqueue.ClientEvent{
		{ClientRef: "ref-1", Kind: "focus_session", DurationMinutes: 50},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(receipts))
	}
	r := receipts[0]
	if r.Status != sqlite.SyncApplied {
		t.Fatalf("status %s (%s), want applied", r.Status, r.Error)
	}
	if r.Result == nil || r.Result.XPAwarded != 100 {
		t.Errorf("result: %+v", r.Result)
	}

	// Offline play earns the same persistent state as online play.
	p, _ := db.Profile(userID)
	if p.XP != 100 || p.SessionCount != 1 {
		t.Errorf("persisted: xp=%d sessions=%d", p.XP, p.SessionCount)
	}
}

func TestSubmit_DuplicateClientRefAbsorbed(t *testing.T) {
	svc, db := testService(t)
	userID := seedUser(t, db)

	event := syncqueue.ClientEvent{ClientRef: "retry-me", Kind: "focus_session", DurationMinutes: 25}

	if _, err := svc.Submit(userID, []syncqueue.ClientEvent{event}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	receipts, err := svc.Submit(userID, []syncqueue.ClientEvent{event})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if receipts[0].Status != "duplicate" {
		t.Errorf("status %s, want duplicate", receipts[0].Status)
	}

	p, _ := db.Profile(userID)
	if p.XP != 50 {
		t.Errorf("duplicate submission double-awarded: xp=%d", p.XP)
	}
}

func TestSubmit_RejectionsRecorded(t *testing.T) {
	svc, db := testService(t)
	userID := seedUser(t, db)

	receipts, err := svc.Submit(userID, []syncqueue.ClientEvent{
		{ClientRef: "bad-duration", Kind: "focus_session", DurationMinutes: 30},
		{ClientRef: "bad-kind", Kind: "meditation"},
		{Kind: "focus_session", DurationMinutes: 25}, // missing client_ref
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	for i, r := range receipts {
		if r.Status != sqlite.SyncRejected {
			t.Errorf("receipt %d: status %s, want rejected", i, r.Status)
		}
		if r.Error == "" {
			t.Errorf("receipt %d: missing error message", i)
		}
	}

	p, _ := db.Profile(userID)
	if p.XP != 0 {
		t.Errorf("rejected events awarded XP: %d", p.XP)
	}
}

func TestSubmit_TaskCompletionExactlyOnce(t *testing.T) {
	svc, db := testService(t)
	userID := seedUser(t, db)

	task := domain.Task{
		ID: uuid.NewString(), UserID: userID, Title: "review notes",
		XPReward: 60, CreatedAt: time.Now().UTC(),
	}
	if err := db.CreateTask(task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Two distinct refs target the same task: first wins, second is rejected.
	receipts, err := svc.Submit(userID, []syncqueue.ClientEvent{
		{ClientRef: "a", Kind: "task_completed", TaskID: task.ID},
		{ClientRef: "b", Kind: "task_completed", TaskID: task.ID},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipts[0].Status != sqlite.SyncApplied {
		t.Errorf("first: %+v", receipts[0])
	}
	if receipts[1].Status != sqlite.SyncRejected {
		t.Errorf("second: %+v", receipts[1])
	}

	p, _ := db.Profile(userID)
	if p.XP != 60 || p.CompletedTaskCount != 1 {
		t.Errorf("task awarded more than once: xp=%d count=%d", p.XP, p.CompletedTaskCount)
	}
}

func TestReconcile_ReplaysPending(t *testing.T) {
	svc, db := testService(t)
	userID := seedUser(t, db)

	// Simulate an interrupted submission: queued but never applied.
	inserted, err := db.EnqueueSync(sqlite.SyncEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		ClientRef:  "orphan",
		Kind:       "focus_session",
		Payload:    `{"duration_minutes":25}`,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil || !inserted {
		t.Fatalf("enqueue: inserted=%v err=%v", inserted, err)
	}

	applied, rejected, err := svc.Reconcile()
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if applied != 1 || rejected != 0 {
		t.Errorf("applied=%d rejected=%d, want 1/0", applied, rejected)
	}

	p, _ := db.Profile(userID)
	if p.XP != 50 {
		t.Errorf("reconcile did not award: xp=%d", p.XP)
	}

	// Nothing left pending.
	pending, _ := db.PendingSyncEntries(10)
	if len(pending) != 0 {
		t.Errorf("entries still pending: %v", pending)
	}
}
