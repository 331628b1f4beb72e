package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/app/leaderboard"
	"github.com/studyloop/studyloop/internal/app/rules"
	"github.com/studyloop/studyloop/internal/app/syncqueue"
	"github.com/studyloop/studyloop/internal/domain"
)

// maxTaskXPReward caps client-chosen task rewards so a task can never be
// worth more than a long focus session.
const maxTaskXPReward = 100

// defaultHistoryLimit bounds /api/me/history when no limit is given.
const defaultHistoryLimit = 50

// ─── Focus Sessions ─────────────────────────────────────────────────────────

type sessionRequest struct {
	DurationMinutes int `json:"duration_minutes"`
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.CompleteSession(requestUserID(r), req.DurationMinutes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

type createTaskRequest struct {
	Title    string `json:"title"`
	XPReward int64  `json:"xp_reward"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.XPReward <= 0 || req.XPReward > maxTaskXPReward {
		writeError(w, http.StatusBadRequest, "xp_reward must be between 1 and 100")
		return
	}

	task := domain.Task{
		ID:        uuid.NewString(),
		UserID:    requestUserID(r),
		Title:     req.Title,
		XPReward:  req.XPReward,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.CreateTask(task); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.db.ListTasks(requestUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	result, err := s.engine.CompleteTask(requestUserID(r), taskID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ─── Badges & History ───────────────────────────────────────────────────────

type badgeView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

func (s *Server) handleMyBadges(w http.ResponseWriter, r *http.Request) {
	unlocks, err := s.db.ListUnlockedBadges(requestUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	badges := make([]badgeView, 0, len(unlocks))
	for _, u := range unlocks {
		view := badgeView{ID: u.BadgeID, UnlockedAt: u.UnlockedAt}
		if def := rules.BadgeByID(u.BadgeID); def != nil {
			view.Name = def.Name
			view.Description = def.Description
		}
		badges = append(badges, view)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"badges": badges,
		"total":  len(rules.Catalog()),
	})
}

func (s *Server) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.db.History(requestUserID(r), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if records == nil {
		records = []domain.ActivityRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

// ─── Leaderboard ────────────────────────────────────────────────────────────

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	period := leaderboard.Period(r.URL.Query().Get("period"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.boards.Top(period, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// ─── Offline Sync ───────────────────────────────────────────────────────────

type syncRequest struct {
	Events []syncqueue.ClientEvent `json:"events"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Events) == 0 {
		writeError(w, http.StatusBadRequest, "events is required")
		return
	}

	receipts, err := s.sync.Submit(requestUserID(r), req.Events)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}
