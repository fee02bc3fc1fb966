// Package metrics defines Prometheus metrics for the visit scheduler.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "konecte_visits_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "konecte_visits_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "konecte_visits_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "konecte_visits_transitions_total",
			Help: "Successful visit transitions by action and resulting status",
		},
		[]string{"action", "status"},
	)

	SlotConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "konecte_visits_slot_conflicts_total",
			Help: "Write attempts rejected because the slot was already claimed",
		},
	)

	NotifyQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "konecte_visits_notify_queue_depth",
			Help: "Current transition notification queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "konecte_visits_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		TransitionsTotal, SlotConflictsTotal,
		NotifyQueueDepth, WSConnections,
	)
}
