// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DuelTransitions counts lifecycle transitions by event.
	DuelTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "humbleop_duel_transitions_total",
		Help: "Total number of duel lifecycle transitions by event",
	}, []string{"event"})

	// ScheduledJobFires counts scheduler job executions by job kind.
	ScheduledJobFires = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "humbleop_scheduled_job_fires_total",
		Help: "Total number of scheduler job firings by job kind",
	}, []string{"job"})

	// DatabaseQueryLatency records database query latency.
	DatabaseQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "humbleop_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// BadgesAwarded counts badge awards by badge name.
	BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "humbleop_badges_awarded_total",
		Help: "Total number of badges awarded by name",
	}, []string{"badge"})
)

// RecordDuelTransition increments the transition counter for the event.
func RecordDuelTransition(event string) {
	DuelTransitions.WithLabelValues(event).Inc()
}

// RecordJobFire increments the scheduler fire counter for the job kind.
func RecordJobFire(job string) {
	ScheduledJobFires.WithLabelValues(job).Inc()
}

// ObserveQueryLatency records one database query duration.
func ObserveQueryLatency(elapsed time.Duration) {
	DatabaseQueryLatency.Observe(elapsed.Seconds())
}

// RecordBadgeAwarded increments the badge counter for the badge name.
func RecordBadgeAwarded(badge string) {
	BadgesAwarded.WithLabelValues(badge).Inc()
}
