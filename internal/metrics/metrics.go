package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filefinder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filefinder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filefinder_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filefinder_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBCommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filefinder_db_commit_duration_seconds",
			Help:    "Write transaction commit duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"outcome"}, // "commit", "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filefinder_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Synchronizer metrics
var (
	SyncRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filefinder_sync_runs_total",
			Help: "Total number of synchronization runs (one per root)",
		},
	)

	SyncErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filefinder_sync_errors_total",
			Help: "Total number of synchronization runs that aborted with an error",
		},
	)

	SyncLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_sync_last_run_timestamp",
			Help: "Timestamp of the last completed synchronization run",
		},
	)

	SyncLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_sync_last_run_duration_seconds",
			Help: "Duration of the last synchronization run in seconds",
		},
	)

	SyncIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_sync_running",
			Help: "Whether a synchronization run is in progress (1 = running, 0 = idle)",
		},
	)

	SyncDirsVisited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filefinder_sync_dirs_visited_total",
			Help: "Total number of directories visited by the traversal driver",
		},
	)

	SyncDirsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filefinder_sync_dirs_skipped_total",
			Help: "Total number of directories skipped by the mtime optimizer",
		},
	)

	SyncListingCalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filefinder_sync_listing_calls_total",
			Help: "Total number of directory listing calls issued to the filesystem",
		},
	)

	SyncRowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filefinder_sync_rows_written_total",
			Help: "Total number of store rows written by the synchronizer",
		},
		[]string{"op"}, // "insert", "delete", "update"
	)

	SyncCommits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filefinder_sync_commits_total",
			Help: "Total number of write transaction commits during synchronization",
		},
	)

	SyncCursorRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filefinder_sync_cursor_refreshes_total",
			Help: "Total number of read cursor refreshes forced by new-directory inserts",
		},
	)
)

// Index contents metrics
var (
	IndexFilesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_index_files_total",
			Help: "Number of file entries currently in the index",
		},
	)

	IndexDirsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_index_dirs_total",
			Help: "Number of directory entries currently in the index",
		},
	)

	IndexBytesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_index_bytes_total",
			Help: "Sum of indexed file sizes in bytes",
		},
	)

	IndexPendingDirs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filefinder_index_pending_dirs",
			Help: "Number of directories currently in the pending work-set",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filefinder_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
