// Package monitoring defines the process-wide Prometheus metrics.
package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microlog_operations_total",
			Help: "Total number of ledger operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	NotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "microlog_notifications_total",
			Help: "Total number of notifications emitted for accepted operations",
		},
	)

	FirehoseSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "microlog_firehose_subscribers",
			Help: "Number of connected firehose subscribers",
		},
	)

	FirehoseDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "microlog_firehose_drops_total",
			Help: "Total number of subscribers dropped for falling behind",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microlog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "microlog_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// Register adds every metric to the default registry. Call once at
// process start; calling twice panics, like prometheus.MustRegister.
func Register() {
	prometheus.MustRegister(
		OperationsTotal,
		NotificationsTotal,
		FirehoseSubscribers,
		FirehoseDropsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
