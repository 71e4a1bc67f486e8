// Package metrics exposes Prometheus instrumentation for the write-transaction
// core: prepare/commit/rollback timings, chain-splice counts, and dense-node
// upgrades.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transaction lifecycle metrics
	TransactionsPrepared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphstore_transactions_prepared_total",
			Help: "Total number of transactions successfully prepared",
		},
	)

	TransactionsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphstore_transactions_committed_total",
			Help: "Total number of transactions successfully committed",
		},
	)

	TransactionsRolledBack = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphstore_transactions_rolled_back_total",
			Help: "Total number of transactions rolled back",
		},
	)

	TransactionsRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphstore_transactions_recovered_total",
			Help: "Total number of transactions re-applied during recovery replay",
		},
	)

	PrepareDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphstore_prepare_duration_seconds",
			Help:    "Time taken to materialize a transaction's change buffer into commands",
			Buckets: prometheus.DefBuckets,
		},
	)

	CommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphstore_commit_duration_seconds",
			Help:    "Time taken to execute a prepared command list against the store",
			Buckets: prometheus.DefBuckets,
		},
	)

	CommandsPerTransaction = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphstore_commands_per_transaction",
			Help:    "Number of commands produced by a single transaction's prepare phase",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Chain operator metrics
	RelationshipChainSplices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphstore_relationship_chain_splices_total",
			Help: "Total number of relationship chain splice operations by kind",
		},
		[]string{"op"}, // create, delete
	)

	GroupChainSplices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphstore_group_chain_splices_total",
			Help: "Total number of relationship-group chain splice operations by kind",
		},
		[]string{"op"}, // create, remove-empty-group
	)

	PropertyChainOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphstore_property_chain_ops_total",
			Help: "Total number of property chain operations by kind",
		},
		[]string{"op"}, // add, change, remove
	)

	DenseNodeUpgrades = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphstore_dense_node_upgrades_total",
			Help: "Total number of nodes upgraded from direct-chain to group-chain representation",
		},
	)

	// Label-scan and property-index metrics
	LabelUpdatesEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphstore_label_updates_emitted_total",
			Help: "Total number of node label-update tuples written to the label-scan index",
		},
	)

	PropertyIndexBatchesSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphstore_property_index_batches_submitted_total",
			Help: "Total number of lazy property-index update batches submitted to the indexing service",
		},
	)

	// Lock metrics
	NodeLockWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphstore_node_lock_wait_duration_seconds",
			Help:    "Time spent waiting to acquire a node write lock during commit",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		TransactionsPrepared,
		TransactionsCommitted,
		TransactionsRolledBack,
		TransactionsRecovered,
		PrepareDuration,
		CommitDuration,
		CommandsPerTransaction,
		RelationshipChainSplices,
		GroupChainSplices,
		PropertyChainOps,
		DenseNodeUpgrades,
		LabelUpdatesEmitted,
		PropertyIndexBatchesSubmitted,
		NodeLockWaitDuration,
	)
}

// Handler returns the Prometheus HTTP handler for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
