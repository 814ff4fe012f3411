package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all gala metrics
const namespace = "gala"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// RoleLookups counts role resolutions by outcome (resolved, timeout, failure)
var RoleLookups = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_lookups_total",
		Help:      "Total number of profile role lookups by outcome",
	},
	[]string{"outcome"},
)

// RoleLookupDuration records how long role lookups took before settling or timing out
var RoleLookupDuration = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "role_lookup_duration_seconds",
		Help:      "Role lookup latency in seconds, capped by the lookup timeout",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// SessionEvents counts session change notifications applied by resolvers
var SessionEvents = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Session change notifications applied, by kind",
	},
	[]string{"kind"},
)

// SignIns counts sign-in attempts by result
var SignIns = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Sign-in attempts by result (success, invalid_credentials, error)",
	},
	[]string{"result"},
)

// SuggestionResults records how many suggestions each query returned
var SuggestionResults = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "suggestion_results",
		Help:      "Number of suggestions returned per query",
		Buckets:   []float64{0, 1, 2, 4, 8},
	},
	[]string{"section"},
)

// SnapshotCache counts snapshot cache lookups by result (hit, miss)
var SnapshotCache = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_cache_total",
		Help:      "Snapshot cache lookups by result",
	},
	[]string{"result"},
)

// SnapshotLoadDuration records database snapshot load latency
var SnapshotLoadDuration = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "snapshot_load_duration_seconds",
		Help:      "Snapshot load latency from the database in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// AdminWrites counts admin create/update/delete operations
var AdminWrites = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_writes_total",
		Help:      "Admin write operations by record kind and action",
	},
	[]string{"kind", "action"},
)

var initOnce sync.Once

// Init registers runtime collectors and sets version information
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		// Register default Go metrics (memory, goroutines, GC, etc.)
		Registry.MustRegister(collectors.NewGoCollector())

		// Register process metrics (CPU, memory, file descriptors)
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
