package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBQueryDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_errors_total",
			Help:      "Total number of database errors",
		},
		[]string{"operation", "error_type"},
	)
)

// poolStats reports pgxpool statistics at scrape time.
type poolStats struct {
	stat func() *pgxpool.Stat

	total    *prometheus.Desc
	acquired *prometheus.Desc
	idle     *prometheus.Desc
	waits    *prometheus.Desc
}

func newPoolStats(stat func() *pgxpool.Stat) *poolStats {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "db", name), help, nil, nil)
	}
	return &poolStats{
		stat:     stat,
		total:    desc("connections_open", "Total number of open database connections"),
		acquired: desc("connections_in_use", "Number of database connections currently acquired"),
		idle:     desc("connections_idle", "Number of idle database connections"),
		waits:    desc("acquire_waits_total", "Acquires that had to wait for a free connection"),
	}
}

func (c *poolStats) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.acquired
	ch <- c.idle
	ch <- c.waits
}

func (c *poolStats) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.waits, prometheus.CounterValue, float64(s.EmptyAcquireCount()))
}

// RegisterPool exposes pool statistics on the registry. The returned func
// unregisters them; call it before closing the pool.
func RegisterPool(pool *pgxpool.Pool) (unregister func(), err error) {
	c := newPoolStats(pool.Stat)
	if err := Registry.Register(c); err != nil {
		return nil, err
	}
	return func() { Registry.Unregister(c) }, nil
}

// RecordQuery records latency and errors for one database operation:
//
//	start := time.Now()
//	defer func() { metrics.RecordQuery("load_snapshot", start, err) }()
func RecordQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}
	errorType := "query_error"
	switch {
	case errors.Is(err, context.Canceled):
		errorType = "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		errorType = "timeout"
	}
	DBErrors.WithLabelValues(operation, errorType).Inc()
}
