// Package metrics provides Prometheus metrics for StudyLoop: counters,
// gauges, and histograms for XP awards, sessions, tasks, badges, the sync
// queue, and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── XP Awards ──────────────────────────────────────────────────────────────

// XPAwarded tracks total XP granted by activity kind.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "xp_awarded_total",
	Help:      "Total XP granted, by activity kind.",
}, []string{"kind"})

// AwardConflicts tracks optimistic write conflicts during awards.
var AwardConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "award_conflicts_total",
	Help:      "Optimistic write conflicts detected while persisting awards.",
})

// LevelUps tracks level transitions by new level.
var LevelUps = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "level_ups_total",
	Help:      "Level-up events, by new level.",
}, []string{"level"})

// ─── Sessions & Tasks ───────────────────────────────────────────────────────

// SessionsCompleted tracks focus sessions by duration.
var SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "sessions_completed_total",
	Help:      "Completed focus sessions, by duration in minutes.",
}, []string{"minutes"})

// SessionsRejected tracks sessions rejected for invalid duration.
var SessionsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "sessions_rejected_total",
	Help:      "Focus sessions rejected for invalid duration.",
})

// TasksCompleted tracks task completions.
var TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "tasks_completed_total",
	Help:      "Total study tasks completed.",
})

// TasksRejected tracks refused completions by reason.
var TasksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "tasks_rejected_total",
	Help:      "Task completions refused, by reason.",
}, []string{"reason"})

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgesUnlocked tracks badge unlocks by badge id.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "badges_unlocked_total",
	Help:      "Badge unlocks, by badge id.",
}, []string{"badge"})

// ─── Sync Queue ─────────────────────────────────────────────────────────────

// SyncSubmitted tracks offline events received, by outcome.
var SyncSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studyloop",
	Name:      "sync_submitted_total",
	Help:      "Offline sync events received, by outcome.",
}, []string{"status"})

// SyncBacklog tracks the current pending sync-queue depth.
var SyncBacklog = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "studyloop",
	Name:      "sync_backlog",
	Help:      "Pending sync-queue entries awaiting reconciliation.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequestDuration tracks API request latency by route and status class.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "studyloop",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "status"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "studyloop",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
