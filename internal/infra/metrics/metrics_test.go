package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestAwardMetrics_Registered(t *testing.T) {
	XPAwarded.WithLabelValues("focus_session").Add(50)
	AwardConflicts.Inc()
	LevelUps.WithLabelValues("scholar").Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"studyloop_xp_awarded_total",
		"studyloop_award_conflicts_total",
		"studyloop_level_ups_total",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestActivityMetrics_Registered(t *testing.T) {
	SessionsCompleted.WithLabelValues("25").Inc()
	SessionsRejected.Inc()
	TasksCompleted.Inc()
	TasksRejected.WithLabelValues("already_completed").Inc()
	BadgesUnlocked.WithLabelValues("first_focus").Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"studyloop_sessions_completed_total",
		"studyloop_sessions_rejected_total",
		"studyloop_tasks_completed_total",
		"studyloop_tasks_rejected_total",
		"studyloop_badges_unlocked_total",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestSyncAndHTTPMetrics_Registered(t *testing.T) {
	SyncSubmitted.WithLabelValues("applied").Inc()
	SyncBacklog.Set(3)
	HTTPRequestDuration.WithLabelValues("/api/sessions", "2xx").Observe(0.02)
	HealthCheckStatus.WithLabelValues("sqlite").Set(1)

	names := gatheredNames(t)
	for _, name := range []string{
		"studyloop_sync_submitted_total",
		"studyloop_sync_backlog",
		"studyloop_http_request_duration_seconds",
		"studyloop_health_check_status",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}
