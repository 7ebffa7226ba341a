// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesReceivedTotal counts frames delivered by the radio transport.
	FramesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterhead_frames_received_total",
			Help: "Total number of frames received from the radio transport",
		},
	)

	// FramesMalformedTotal counts frames discarded by the decoder.
	FramesMalformedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterhead_frames_malformed_total",
			Help: "Total number of frames discarded as malformed",
		},
	)

	// SequenceGapsTotal counts per-node sequence discontinuities.
	SequenceGapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterhead_sequence_gaps_total",
			Help: "Total number of sequence counter discontinuities",
		},
	)

	// RecordsPersistedTotal counts records written to the store.
	RecordsPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterhead_records_persisted_total",
			Help: "Total number of records persisted to the data store",
		},
	)

	// RecordsDroppedTotal counts records dropped after a failed post-reconnect retry.
	RecordsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterhead_records_dropped_total",
			Help: "Total number of records dropped after a failed insert retry",
		},
	)

	// FaultLabelsTotal counts classifier verdicts by label.
	FaultLabelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterhead_fault_labels_total",
			Help: "Total number of classified samples by fault label",
		},
		[]string{"label"},
	)

	// WatchdogExpiriesTotal counts node liveness losses.
	WatchdogExpiriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterhead_watchdog_expiries_total",
			Help: "Total number of per-node watchdog expiries",
		},
	)

	// SessionReconnectsTotal counts reconnect episodes by session.
	SessionReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterhead_session_reconnects_total",
			Help: "Total number of reconnect episodes by session",
		},
		[]string{"session"},
	)

	// InsertDurationSeconds measures store insert latency.
	InsertDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clusterhead_insert_duration_seconds",
			Help:    "Latency of data store inserts in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
	)

	// NodesTracked tracks the number of nodes with live state.
	NodesTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusterhead_nodes_tracked",
			Help: "Current number of nodes with live per-node state",
		},
	)

	// CellPopulation tracks the global dendritic cell population.
	CellPopulation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusterhead_dca_cell_population",
			Help: "Current total dendritic cell population across all nodes",
		},
	)
)
