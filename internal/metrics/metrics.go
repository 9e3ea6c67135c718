package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Alert domain metrics
	AlertsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_created_total",
			Help: "Total number of alerts created",
		},
		[]string{"category"},
	)
	AlertsUpdatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_updated_total",
			Help: "Total number of alert replace-wholesale updates",
		},
	)
	AlertsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_deleted_total",
			Help: "Total number of alerts deleted",
		},
	)
	AlertValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_validation_failures_total",
			Help: "Alert payloads rejected by validation, by reason",
		},
		[]string{"reason"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(AlertsCreatedTotal)
	prometheus.MustRegister(AlertsUpdatedTotal)
	prometheus.MustRegister(AlertsDeletedTotal)
	prometheus.MustRegister(AlertValidationFailures)

	prometheus.MustRegister(prometheus.NewGoCollector())
	prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
