// Package syncqueue reconciles offline activity. Clients that could not
// reach the server while a session or task finished submit the events later;
// each is queued once per client reference, then replayed through the same
// rules engine as online traffic so offline play earns identical rewards.
package syncqueue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/app/rules"
	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/infra/metrics"
	"github.com/studyloop/studyloop/internal/infra/sqlite"
)

// reconcileBatch caps how many pending entries one reconcile pass replays.
const reconcileBatch = 100

// ClientEvent is one offline event as submitted by a client. ClientRef is a
// client-generated idempotency key: resubmitting the same ref is a no-op.
type ClientEvent struct {
	ClientRef       string `json:"client_ref"`
	Kind            string `json:"kind"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	TaskID          string `json:"task_id,omitempty"`
}

// Receipt reports the outcome of one submitted event.
type Receipt struct {
	ClientRef string              `json:"client_ref"`
	Status    string              `json:"status"`
	Error     string              `json:"error,omitempty"`
	Result    *domain.AwardResult `json:"result,omitempty"`
}

// payload is the queued JSON form of a client event.
type payload struct {
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	TaskID          string `json:"task_id,omitempty"`
}

// Service queues offline events and replays them through the rules engine.
type Service struct {
	db     *sqlite.DB
	engine *rules.Engine
}

// NewService creates a sync queue service.
func NewService(db *sqlite.DB, engine *rules.Engine) *Service {
	return &Service{db: db, engine: engine}
}

// Submit enqueues a batch of offline events for one user and reconciles them
// immediately. Duplicate client refs are absorbed: the event is neither
// re-queued nor re-applied, and its receipt says so.
func (s *Service) Submit(userID string, events []ClientEvent) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(events))
	for _, ev := range events {
		receipt, err := s.submitOne(userID, ev)
		if err != nil {
			return nil, err
		}
		metrics.SyncSubmitted.WithLabelValues(receipt.Status).Inc()
		receipts = append(receipts, receipt)
	}
	if backlog, err := s.db.PendingSyncCount(); err == nil {
		metrics.SyncBacklog.Set(float64(backlog))
	}
	return receipts, nil
}

func (s *Service) submitOne(userID string, ev ClientEvent) (Receipt, error) {
	receipt := Receipt{ClientRef: ev.ClientRef}
	if ev.ClientRef == "" {
		receipt.Status = sqlite.SyncRejected
		receipt.Error = "client_ref is required"
		return receipt, nil
	}

	body, err := json.Marshal(payload{
		DurationMinutes: ev.DurationMinutes,
		TaskID:          ev.TaskID,
	})
	if err != nil {
		return receipt, fmt.Errorf("encode sync payload: %w", err)
	}

	entry := sqlite.SyncEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		ClientRef:  ev.ClientRef,
		Kind:       ev.Kind,
		Payload:    string(body),
		EnqueuedAt: time.Now().UTC(),
	}
	inserted, err := s.db.EnqueueSync(entry)
	if err != nil {
		return receipt, fmt.Errorf("enqueue sync entry: %w", err)
	}
	if !inserted {
		receipt.Status = "duplicate"
		return receipt, nil
	}

	result, applyErr := s.apply(entry)
	if applyErr != nil {
		receipt.Status = sqlite.SyncRejected
		receipt.Error = applyErr.Error()
		if err := s.db.ResolveSyncEntry(entry.ID, sqlite.SyncRejected, applyErr.Error()); err != nil {
			return receipt, err
		}
		return receipt, nil
	}

	receipt.Status = sqlite.SyncApplied
	receipt.Result = result
	if err := s.db.ResolveSyncEntry(entry.ID, sqlite.SyncApplied, ""); err != nil {
		return receipt, err
	}
	return receipt, nil
}

// Reconcile replays pending entries left over from interrupted submissions,
// oldest first. Rules rejections mark the entry rejected and move on;
// infrastructure errors stop the pass so the entry stays pending for retry.
func (s *Service) Reconcile() (applied, rejected int, err error) {
	entries, err := s.db.PendingSyncEntries(reconcileBatch)
	if err != nil {
		return 0, 0, fmt.Errorf("load pending sync entries: %w", err)
	}

	for _, entry := range entries {
		_, applyErr := s.apply(entry)
		switch {
		case applyErr == nil:
			if err := s.db.ResolveSyncEntry(entry.ID, sqlite.SyncApplied, ""); err != nil {
				return applied, rejected, err
			}
			applied++
		case isRulesRejection(applyErr):
			if err := s.db.ResolveSyncEntry(entry.ID, sqlite.SyncRejected, applyErr.Error()); err != nil {
				return applied, rejected, err
			}
			rejected++
		default:
			return applied, rejected, fmt.Errorf("apply sync entry %s: %w", entry.ID, applyErr)
		}
	}
	if backlog, err := s.db.PendingSyncCount(); err == nil {
		metrics.SyncBacklog.Set(float64(backlog))
	}
	return applied, rejected, nil
}

// apply replays one queued entry through the rules engine.
func (s *Service) apply(entry sqlite.SyncEntry) (*domain.AwardResult, error) {
	var p payload
	if err := json.Unmarshal([]byte(entry.Payload), &p); err != nil {
		return nil, fmt.Errorf("decode sync payload: %w", err)
	}

	switch domain.ActivityKind(entry.Kind) {
	case domain.ActivityFocusSession:
		return s.engine.CompleteSession(entry.UserID, p.DurationMinutes)
	case domain.ActivityTaskCompleted:
		return s.engine.CompleteTask(entry.UserID, p.TaskID)
	default:
		return nil, domain.ErrUnknownSyncKind
	}
}

// isRulesRejection reports whether err is a deterministic rules verdict that
// retrying can never change.
func isRulesRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidDuration) ||
		errors.Is(err, domain.ErrTaskNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrAlreadyCompleted) ||
		errors.Is(err, domain.ErrProfileNotFound) ||
		errors.Is(err, domain.ErrUnknownSyncKind)
}
