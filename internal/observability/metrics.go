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
	// Scanner metrics
	SnapshotsFetched  prometheus.Counter
	SnapshotsSkipped  prometheus.Counter
	SignalsEmitted    prometheus.Counter
	SignalsSuppressed prometheus.Counter
	ScanCyclesTotal   *prometheus.CounterVec
	ScanCycleDuration prometheus.Histogram

	// Reconciler metrics
	WalletsReconciled    prometheus.Counter
	TransactionsIngested prometheus.Counter
	TransactionsSkipped  prometheus.Counter
	ClosedTradesTotal    prometheus.Counter
	UnmatchedSells       prometheus.Counter
	ReconcilePassesTotal *prometheus.CounterVec
	ReconcileDuration    prometheus.Histogram

	// Database metrics
	DBQueryErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulScan      prometheus.Gauge
	LastSuccessfulReconcile prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "momentum_lab"
	}

	return &Metrics{
		// Scanner metrics
		SnapshotsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "snapshots_fetched_total",
			Help:      "Total number of token snapshots fetched from the market data provider",
		}),
		SnapshotsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "snapshots_skipped_total",
			Help:      "Total number of malformed snapshots skipped during evaluation",
		}),
		SignalsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "signals_emitted_total",
			Help:      "Total number of momentum signals emitted",
		}),
		SignalsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "signals_suppressed_total",
			Help:      "Total number of signals suppressed by the cooldown window",
		}),
		ScanCyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "cycles_total",
			Help:      "Total number of scan cycles by status",
		}, []string{"status"}),
		ScanCycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "cycle_duration_seconds",
			Help:      "Scan cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Reconciler metrics
		WalletsReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "wallets_reconciled_total",
			Help:      "Total number of wallet reconciliations completed",
		}),
		TransactionsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "transactions_ingested_total",
			Help:      "Total number of wallet transactions classified and stored",
		}),
		TransactionsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "transactions_skipped_total",
			Help:      "Total number of raw transactions skipped as unclassifiable",
		}),
		ClosedTradesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "closed_trades_total",
			Help:      "Total number of closed trades reconstructed",
		}),
		UnmatchedSells: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "unmatched_sells_total",
			Help:      "Total number of sells with no matching open lot",
		}),
		ReconcilePassesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "passes_total",
			Help:      "Total number of reconciliation passes by status",
		}, []string{"status"}),
		ReconcileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "pass_duration_seconds",
			Help:      "Reconciliation pass duration in seconds",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		}),

		// Database metrics
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulScan: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan cycle",
		}),
		LastSuccessfulReconcile: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_reconcile_timestamp",
			Help:      "Unix timestamp of last successful reconciliation pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScanCycle records a completed scan cycle.
func RecordScanCycle(status string, durationSeconds float64) {
	DefaultMetrics.ScanCyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanCycleDuration.Observe(durationSeconds)
}

// RecordSnapshots records fetched and skipped snapshot counts for a cycle.
func RecordSnapshots(fetched, skipped int) {
	DefaultMetrics.SnapshotsFetched.Add(float64(fetched))
	DefaultMetrics.SnapshotsSkipped.Add(float64(skipped))
}

// RecordSignalsEmitted increments the emitted signal counter.
func RecordSignalsEmitted(n int) {
	DefaultMetrics.SignalsEmitted.Add(float64(n))
}

// RecordSignalsSuppressed adds to the cooldown suppression counter.
func RecordSignalsSuppressed(n int) {
	DefaultMetrics.SignalsSuppressed.Add(float64(n))
}

// RecordReconcilePass records a completed reconciliation pass.
func RecordReconcilePass(status string, durationSeconds float64) {
	DefaultMetrics.ReconcilePassesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ReconcileDuration.Observe(durationSeconds)
}

// RecordWalletReconciled records the outcome of one wallet reconciliation.
func RecordWalletReconciled(ingested, skipped, closedTrades, unmatchedSells int) {
	DefaultMetrics.WalletsReconciled.Inc()
	DefaultMetrics.TransactionsIngested.Add(float64(ingested))
	DefaultMetrics.TransactionsSkipped.Add(float64(skipped))
	DefaultMetrics.ClosedTradesTotal.Add(float64(closedTrades))
	DefaultMetrics.UnmatchedSells.Add(float64(unmatchedSells))
}

// RecordDBError records a database query error.
func RecordDBError(database, operation string) {
	DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
}
