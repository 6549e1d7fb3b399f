// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Crawl metrics
	SignaturePagesFetched prometheus.Counter
	SignaturesStored      prometheus.Counter
	SignaturesDuplicate   prometheus.Counter
	SignaturesSkipped     *prometheus.CounterVec

	// Decode metrics
	SwapsDecoded   prometheus.Counter
	DecodesSkipped *prometheus.CounterVec
	DeltasStored   prometheus.Counter

	// Resolver metrics
	SlotProbes        prometheus.Counter
	SkippedSlotProbes prometheus.Counter

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCRetries     *prometheus.CounterVec

	// Run metrics
	PairRunsTotal   *prometheus.CounterVec
	PairRunDuration prometheus.Histogram
	WorkersActive   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_pool_crawler"
	}

	return &Metrics{
		// Crawl metrics
		SignaturePagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "signature_pages_fetched_total",
			Help:      "Total number of signature pages fetched",
		}),
		SignaturesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "signatures_stored_total",
			Help:      "Total number of signature records persisted",
		}),
		SignaturesDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "signatures_duplicate_total",
			Help:      "Total number of signatures already present in their destination",
		}),
		SignaturesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "signatures_skipped_total",
			Help:      "Total number of signatures skipped by reason",
		}, []string{"reason"}),

		// Decode metrics
		SwapsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decode",
			Name:      "swaps_decoded_total",
			Help:      "Total number of transactions classified as two-leg swaps",
		}),
		DecodesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decode",
			Name:      "skipped_total",
			Help:      "Total number of transactions skipped during decode by reason",
		}, []string{"reason"}),
		DeltasStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decode",
			Name:      "deltas_stored_total",
			Help:      "Total number of balance delta records persisted",
		}),

		// Resolver metrics
		SlotProbes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "slot_probes_total",
			Help:      "Total number of block time probes during slot resolution",
		}),
		SkippedSlotProbes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "skipped_slot_probes_total",
			Help:      "Total number of probes that hit a skipped slot",
		}),

		// RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_retries_total",
			Help:      "Total number of retried RPC calls by method",
		}, []string{"method"}),

		// Run metrics
		PairRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "pair_runs_total",
			Help:      "Total number of mint pair runs by status",
		}, []string{"status"}),
		PairRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "pair_duration_seconds",
			Help:      "Wall clock duration of one mint pair run",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		WorkersActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "workers_active",
			Help:      "Number of decode workers currently running",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSignatureStored increments the signatures stored counter.
func RecordSignatureStored() {
	DefaultMetrics.SignaturesStored.Inc()
}

// RecordSignatureSkipped records a skipped signature by reason.
func RecordSignatureSkipped(reason string) {
	DefaultMetrics.SignaturesSkipped.WithLabelValues(reason).Inc()
}

// RecordSwapDecoded increments the swaps decoded counter.
func RecordSwapDecoded() {
	DefaultMetrics.SwapsDecoded.Inc()
}

// RecordDecodeSkipped records a skipped decode by reason.
func RecordDecodeSkipped(reason string) {
	DefaultMetrics.DecodesSkipped.WithLabelValues(reason).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordPairRun records a completed mint pair run.
func RecordPairRun(status string, durationSeconds float64) {
	DefaultMetrics.PairRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PairRunDuration.Observe(durationSeconds)
}
