// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AutosavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_autosaves_total",
		Help: "Total draft autosave attempts by outcome",
	}, []string{"outcome"})

	AutosaveQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intake_autosave_queue_depth",
		Help: "Pending coalesced autosave payloads",
	})

	GenerationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_generation_requests_total",
		Help: "Narrative generation requests by mode and outcome",
	}, []string{"mode", "outcome"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intake_generation_duration_seconds",
		Help:    "Narrative generation call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	GenerationParseFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_generation_parse_fallbacks_total",
		Help: "Generation responses that required the parse fallback",
	}, []string{"mode"})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_submissions_total",
		Help: "Finalized wizard submissions by outcome",
	}, []string{"outcome"})

	DashboardExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_dashboard_exports_total",
		Help: "CSV exports produced by the dashboard",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_notifications_total",
		Help: "Submission notifications by channel and outcome",
	}, []string{"channel", "outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intake_active_sessions",
		Help: "Wizard sessions currently held in memory",
	})
)
