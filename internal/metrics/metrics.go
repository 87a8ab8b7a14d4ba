package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fleet"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Inspection metrics
var (
	InspectionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inspections_processed_total",
			Help:      "Total number of committed inspection submissions by final status",
		},
		[]string{"operation", "status"},
	)

	GateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_failures_total",
			Help:      "Total number of submissions rejected by the mechanical safety gate",
		},
	)

	ScoreFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_failures_total",
			Help:      "Total number of submissions rejected for a body or interior score below threshold",
		},
	)

	InspectionsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inspections_deleted_total",
			Help:      "Total number of inspections deleted",
		},
	)
)

// Vehicle metrics
var (
	VehiclesProvisioned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicles_provisioned_total",
			Help:      "Total number of placeholder vehicles created for unknown plates",
		},
	)

	VehicleSyncWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicle_sync_writes_total",
			Help:      "Total number of vehicle fleet record syncs, by whether a save was needed",
		},
		[]string{"result"}, // "saved" or "unchanged"
	)
)
