package sqlite

import (
	"database/sql"
	"time"

	"github.com/studyloop/studyloop/internal/domain"
)

// ─── Task Repository ────────────────────────────────────────────────────────

// CreateTask inserts a new study task.
func (d *DB) CreateTask(t domain.Task) error {
	_, err := d.db.Exec(
		`INSERT INTO tasks (id, user_id, title, xp_reward, completed, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.XPReward, t.Completed,
		nullableUnix(t.CompletedAt), t.CreatedAt.Unix(),
	)
	return err
}

// Task retrieves a task by id. Returns domain.ErrTaskNotFound if missing.
func (d *DB) Task(taskID string) (*domain.Task, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, title, xp_reward, completed, completed_at, created_at
		 FROM tasks WHERE id = ?`, taskID,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

// ListTasks returns a user's tasks, open first, newest first within a group.
func (d *DB) ListTasks(userID string) ([]domain.Task, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, title, xp_reward, completed, completed_at, created_at
		 FROM tasks WHERE user_id = ? ORDER BY completed ASC, created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var completedAt sql.NullInt64
	var createdAt int64

	err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.XPReward, &t.Completed, &completedAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.CompletedAt = timeFromNullable(completedAt)
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &t, nil
}
