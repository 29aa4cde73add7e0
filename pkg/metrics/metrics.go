package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Database query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// Session lifecycle transitions
	SessionTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transition_count",
			Help: "Total number of timer session state transitions",
		},
		[]string{"transition", "outcome"}, // transition: start, pause, resume, stop
	)

	// Registration events published to the notification exchange
	RegistrationEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_event_count",
			Help: "Total number of registration lifecycle events published",
		},
		[]string{"event"}, // event: pending, approved, denied
	)
)

// RecordHTTPRequestDuration records one HTTP request observation.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records one database query observation.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSessionTransition counts a lifecycle transition attempt.
func IncrementSessionTransition(transition, outcome string) {
	SessionTransitionCount.WithLabelValues(transition, outcome).Inc()
}

// IncrementRegistrationEvent counts a published registration event.
func IncrementRegistrationEvent(event string) {
	RegistrationEventCount.WithLabelValues(event).Inc()
}
