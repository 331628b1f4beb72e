package sqlite

import (
	"time"
)

// ─── Offline Sync Queue ─────────────────────────────────────────────────────
// Clients that could not reach the server enqueue their events here; the
// sync service replays each through the rules engine. Rows are kept after
// reconciliation for audit.

// Sync entry statuses.
const (
	SyncPending  = "pending"
	SyncApplied  = "applied"
	SyncRejected = "rejected"
)

// SyncEntry is one queued offline event awaiting reconciliation.
type SyncEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ClientRef  string    `json:"client_ref"`
	Kind       string    `json:"kind"`
	Payload    string    `json:"payload"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// EnqueueSync inserts a queue entry. Returns false without error when an
// entry with the same (user, client_ref) already exists — retransmissions of
// the same offline event are absorbed silently.
func (d *DB) EnqueueSync(e SyncEntry) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO sync_queue (id, user_id, client_ref, kind, payload, status, error, enqueued_at)
		 VALUES (?, ?, ?, ?, ?, ?, '', ?)`,
		e.ID, e.UserID, e.ClientRef, e.Kind, e.Payload, SyncPending, e.EnqueuedAt.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// PendingSyncEntries returns queued entries oldest first.
func (d *DB) PendingSyncEntries(limit int) ([]SyncEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, client_ref, kind, payload, status, error, enqueued_at
		 FROM sync_queue WHERE status = ? ORDER BY enqueued_at ASC, id ASC LIMIT ?`,
		SyncPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SyncEntry
	for rows.Next() {
		var e SyncEntry
		var enqueuedAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.ClientRef, &e.Kind, &e.Payload, &e.Status, &e.Error, &enqueuedAt); err != nil {
			return nil, err
		}
		e.EnqueuedAt = time.Unix(enqueuedAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PendingSyncCount returns how many entries are waiting for reconciliation.
func (d *DB) PendingSyncCount() (int64, error) {
	var count int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM sync_queue WHERE status = ?`, SyncPending).Scan(&count)
	return count, err
}

// ResolveSyncEntry marks an entry applied or rejected.
func (d *DB) ResolveSyncEntry(id, status, errMsg string) error {
	_, err := d.db.Exec(
		`UPDATE sync_queue SET status = ?, error = ? WHERE id = ?`,
		status, errMsg, id,
	)
	return err
}
