// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// uploadsTotal counts completed /api/upload requests, partitioned by
	// outcome: "ok", "rejected", or "error".
	uploadsTotal *prometheus.CounterVec

	// uploadChunks records the number of chunks indexed per successful upload.
	uploadChunks prometheus.Histogram

	// uploadBytes records the size of each accepted upload body.
	uploadBytes prometheus.Histogram

	// httpInFlight tracks the number of requests currently being handled.
	httpInFlight prometheus.Gauge

	// queriesTotal counts completed /api/query requests, partitioned by
	// outcome: "ok", "rejected", or "error".
	queriesTotal *prometheus.CounterVec

	// queryDurationSeconds records the wall-clock duration of each /api/query
	// request from receipt to response.
	queryDurationSeconds *prometheus.HistogramVec

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler name, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default —
// this keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docrag",
			Subsystem: "upload",
			Name:      "requests_total",
			Help:      "Total number of /api/upload requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		uploadChunks: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docrag",
			Subsystem: "upload",
			Name:      "chunks",
			Help:      "Number of chunks indexed per successful upload.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		uploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docrag",
			Subsystem: "upload",
			Name:      "bytes",
			Help:      "Size in bytes of each accepted upload body.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),

		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "docrag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being handled.",
		}),

		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docrag",
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Total number of /api/query requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		queryDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docrag",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of /api/query requests from receipt to response.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"outcome"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docrag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docrag",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}
