package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the platform Prometheus collectors.
	Registry = prometheus.NewRegistry()

	requestCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aiza_requests_total",
			Help: "Total requests",
		},
	)

	requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aiza_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	errorCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aiza_errors_total",
			Help: "Total errors",
		},
	)
)

func init() {
	Registry.MustRegister(
		requestCount,
		requestDuration,
		errorCount,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registry in the Prometheus
// text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest counts one served request.
func RecordRequest(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	requestCount.Inc()
	requestDuration.Observe(duration.Seconds())
}

// RecordError counts one request that ended in an unhandled error.
func RecordError() {
	errorCount.Inc()
}
