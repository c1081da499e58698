package logstore

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsRegistry = prometheus.NewRegistry()

	flushesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftkv",
			Subsystem: "logstore",
			Name:      "flushes_total",
			Help:      "Total number of write-buffer flushes appended to the log.",
		},
	)

	recordsAppended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftkv",
			Subsystem: "logstore",
			Name:      "records_appended_total",
			Help:      "Total number of records appended to the log.",
		},
	)

	compactionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftkv",
			Subsystem: "logstore",
			Name:      "compactions_total",
			Help:      "Total number of completed log compactions.",
		},
	)

	compactionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftkv",
			Subsystem: "logstore",
			Name:      "compaction_failures_total",
			Help:      "Total number of compaction cycles skipped due to errors.",
		},
	)

	flushFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftkv",
			Subsystem: "logstore",
			Name:      "flush_failures_total",
			Help:      "Total number of failed flush attempts (buffer retained).",
		},
	)
)

func init() {
	metricsRegistry.MustRegister(
		flushesTotal,
		recordsAppended,
		compactionsTotal,
		compactionFailures,
		flushFailures,
	)
}

// MetricsHandler exposes the package collectors. Mount it with
// mux.Handle("/metrics", logstore.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})
}
