package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telemetry_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)

	// Ingest metrics
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_readings_total",
			Help: "Total number of readings received",
		},
		[]string{"dataset", "status"}, // status: stored, failed
	)

	EvaluationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telemetry_evaluation_errors_total",
			Help: "Threshold evaluations skipped because of malformed thresholds",
		},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_alerts_total",
			Help: "Total number of threshold alerts raised",
		},
		[]string{"kind"},
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_notifications_total",
			Help: "Notification delivery attempts by provider and outcome",
		},
		[]string{"provider", "status"}, // status: sent, failed, dropped
	)
)
