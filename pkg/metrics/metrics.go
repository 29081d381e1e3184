package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scan metrics
	ScanFilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdvault_scan_files_total",
			Help: "Total number of files observed by the scanner across all syncs",
		},
	)

	ScanErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdvault_scan_errors_total",
			Help: "Total number of per-entry scan failures (logged and skipped)",
		},
	)

	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mdvault_scan_duration_seconds",
			Help:    "Time taken to walk the root directory and build the scan set",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Sync/pipeline metrics
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mdvault_sync_duration_seconds",
			Help:    "Time taken by Commit, from grouping updates through the cache rebuild",
			Buckets: prometheus.DefBuckets,
		},
	)

	SyncUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdvault_sync_updates_total",
			Help: "Total number of file updates carried by sync sessions",
		},
	)

	SyncDeletesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdvault_sync_deletes_total",
			Help: "Total number of file deletes carried by sync sessions",
		},
	)

	SyncItemErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdvault_sync_item_errors_total",
			Help: "Total number of per-item failures during populate, logged and dropped",
		},
	)

	SyncFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdvault_sync_failures_total",
			Help: "Total number of sync sessions that failed to commit, by reason",
		},
		[]string{"reason"},
	)

	// Store/commit metrics
	CommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mdvault_commit_duration_seconds",
			Help:    "Time taken for the transaction layer to apply a commit",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheItemsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mdvault_cache_items",
			Help: "Number of (key, item) pairs currently held in the in-memory cache",
		},
	)

	DiskIterItemsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdvault_disk_iter_items_total",
			Help: "Total number of items yielded by uncached disk iteration",
		},
	)

	CodecErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdvault_codec_errors_total",
			Help: "Total number of codec failures, by table",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(ScanFilesTotal)
	prometheus.MustRegister(ScanErrorsTotal)
	prometheus.MustRegister(ScanDuration)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(SyncUpdatesTotal)
	prometheus.MustRegister(SyncDeletesTotal)
	prometheus.MustRegister(SyncItemErrorsTotal)
	prometheus.MustRegister(SyncFailuresTotal)
	prometheus.MustRegister(CommitDuration)
	prometheus.MustRegister(CacheItemsTotal)
	prometheus.MustRegister(DiskIterItemsTotal)
	prometheus.MustRegister(CodecErrorsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
