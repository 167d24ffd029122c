package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "occengine_commits_total",
			Help: "Total number of transactions that reached Phase 5 (hand off to logger)",
		},
	)

	AbortsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occengine_aborts_total",
			Help: "Total number of aborted transactions by cause",
		},
		[]string{"cause"},
	)

	PrecommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "occengine_precommit_duration_seconds",
			Help:    "Time taken by the five-phase precommit protocol",
			Buckets: prometheus.DefBuckets,
		},
	)

	CurrentEpoch = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "occengine_current_epoch",
			Help: "The engine's current (being-stamped) epoch",
		},
	)

	DurableEpoch = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "occengine_durable_epoch",
			Help: "Highest epoch every logger has flushed to stable storage",
		},
	)

	EpochLag = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "occengine_epoch_lag",
			Help: "current_epoch - durable_epoch; how far durability trails commits",
		},
	)

	EpochAdvancesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "occengine_epoch_advances_total",
			Help: "Total number of epoch advances, periodic plus on-demand",
		},
	)

	LoggerRingBytesUsed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "occengine_logger_ring_bytes_used",
			Help: "Bytes currently buffered in a worker's log ring, pending flush",
		},
		[]string{"worker_id"},
	)

	LogRecordsFlushedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occengine_log_records_flushed_total",
			Help: "Total number of log records flushed to a sink, per worker",
		},
		[]string{"worker_id"},
	)
)

func init() {
	prometheus.MustRegister(
		CommitsTotal,
		AbortsTotal,
		PrecommitDuration,
		CurrentEpoch,
		DurableEpoch,
		EpochLag,
		EpochAdvancesTotal,
		LoggerRingBytesUsed,
		LogRecordsFlushedTotal,
	)
}

// Handler returns the Prometheus HTTP handler for serve-metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations, used around Precommit.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer { return &Timer{start: time.Now()} }

func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time against a labeled histogram,
// for per-worker or per-cause timings.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Duration() time.Duration { return time.Since(t.start) }
