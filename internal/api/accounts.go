package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/app/rules"
	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/security"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

type signupRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type authResponse struct {
	Token   string             `json:"token"`
	Profile domain.UserProfile `json:"profile"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "display_name is required")
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := domain.UserProfile{
		ID:          uuid.NewString(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Level:       domain.LevelNovice,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateUser(profile, hash); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:   s.keys.IssueToken(profile.ID, security.DefaultTokenTTL),
		Profile: profile,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	profile, hash, err := s.db.ProfileByEmail(email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Same response as a wrong password — no account enumeration.
		writeDomainError(w, domain.ErrInvalidCredentials)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !security.CheckPassword(hash, req.Password) {
		writeDomainError(w, domain.ErrInvalidCredentials)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:   s.keys.IssueToken(profile.ID, security.DefaultTokenTTL),
		Profile: *profile,
	})
}

// meResponse is the profile plus derived progress fields for client UI.
type meResponse struct {
	domain.UserProfile
	XPToNextLevel int64 `json:"xp_to_next_level"`
	WeekXP        int64 `json:"week_xp"`
	ActiveToday   bool  `json:"active_today"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.db.Profile(requestUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	weekXP, err := s.db.LedgerXPSince(profile.ID, now.AddDate(0, 0, -7))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		UserProfile:   *profile,
		XPToNextLevel: rules.XPToNextLevel(profile.XP),
		WeekXP:        weekXP,
		ActiveToday:   rules.ActiveToday(profile.LastActiveAt, now),
	})
}

// handleDeleteAccount removes the authenticated user. Ledger, task, badge,
// and sync rows cascade with the profile.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteUser(requestUserID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
