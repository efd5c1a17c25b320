package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SPFRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecmproute_spf_runs_total",
		Help: "Total number of shortest-path computations, labelled by status.",
	}, []string{"status"})

	SPFDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecmproute_spf_duration_ms",
		Help:    "Duration of a single-source shortest-path computation in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	ECMPDestinations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecmproute_ecmp_destinations_total",
		Help: "Total number of (source, destination) pairs with more than one first hop.",
	})

	UnreachableDestinations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecmproute_unreachable_destinations_total",
		Help: "Total number of (source, destination) pairs without any path.",
	})

	SnapshotBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecmproute_snapshot_builds_total",
		Help: "Total number of routing snapshot builds, labelled by status.",
	}, []string{"status"})

	SnapshotNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecmproute_snapshot_nodes",
		Help: "Number of nodes in the current routing snapshot.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecmproute_queue_utilization_ratio",
		Help: "Current computation queue utilization (0 to 1).",
	})
)
