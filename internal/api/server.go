// Package api provides the StudyLoop HTTP API: accounts, focus sessions,
// tasks, badges, leaderboards, and offline sync.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studyloop/studyloop/internal/app/leaderboard"
	"github.com/studyloop/studyloop/internal/app/rules"
	"github.com/studyloop/studyloop/internal/app/syncqueue"
	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/health"
	"github.com/studyloop/studyloop/internal/infra/metrics"
	"github.com/studyloop/studyloop/internal/infra/sqlite"
	"github.com/studyloop/studyloop/internal/security"
)

// Version is the API version reported by /api/version.
const Version = "0.1.0"

// Server is the StudyLoop HTTP API server.
type Server struct {
	db             *sqlite.DB
	engine         *rules.Engine
	boards         *leaderboard.Service
	sync           *syncqueue.Service
	keys           *security.Keypair
	checker        *health.Checker
	metricsEnabled bool
}

// NewServer creates an API server over the application services.
func NewServer(db *sqlite.DB, engine *rules.Engine, boards *leaderboard.Service, sync *syncqueue.Service, keys *security.Keypair) *Server {
	return &Server{db: db, engine: engine, boards: boards, sync: sync, keys: keys}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker wires the periodic health checker into /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	// Public account endpoints
	r.Post("/api/signup", s.handleSignup)
	r.Post("/api/login", s.handleLogin)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/api/sessions", s.handleCompleteSession)

		r.Post("/api/tasks", s.handleCreateTask)
		r.Get("/api/tasks", s.handleListTasks)
		r.Post("/api/tasks/{id}/complete", s.handleCompleteTask)

		r.Get("/api/me", s.handleMe)
		r.Delete("/api/me", s.handleDeleteAccount)
		r.Get("/api/me/badges", s.handleMyBadges)
		r.Get("/api/me/history", s.handleMyHistory)

		r.Get("/api/leaderboard", s.handleLeaderboard)

		r.Post("/api/sync", s.handleSync)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status := http.StatusOK
	state := "ok"
	if !s.checker.IsHealthy() {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status": state,
		"checks": s.checker.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request duration per route pattern and status
// class. The chi route pattern keeps cardinality bounded.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		class := strconv.Itoa(ww.Status()/100) + "xx"
		metrics.HTTPRequestDuration.WithLabelValues(route, class).Observe(time.Since(start).Seconds())
	})
}
