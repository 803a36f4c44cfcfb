// Package metrics provides Prometheus instrumentation for the filefinder
// service.
//
// All metrics are prefixed with "filefinder_" and registered with the
// default Prometheus registry via promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//
// Monitor entry store query performance and storage:
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBCommitDuration: Histogram of write transaction commit duration
//   - DBConnectionsOpen: Gauge of open database connections
//   - DBSizeBytes: Gauge of database file sizes (main, WAL, SHM)
//
// ## Synchronizer Metrics
//
// Track incremental tree synchronization:
//   - SyncRunsTotal / SyncErrors: run and abort counters
//   - SyncLastRunTimestamp / SyncLastRunDuration: last-run gauges
//   - SyncIsRunning: gauge indicating an active run
//   - SyncDirsVisited / SyncDirsSkipped: traversal driver counters
//   - SyncListingCalls: directory listing calls issued to the filesystem;
//     a directory skipped by the mtime optimizer contributes nothing here
//   - SyncRowsWritten: rows written by op (insert/delete/update)
//   - SyncCommits / SyncCursorRefreshes: commit policy counters
//
// ## Index Contents Metrics
//
// Gauges of what the store currently holds, updated by the [Collector]:
// IndexFilesTotal, IndexDirsTotal, IndexBytesTotal, IndexPendingDirs.
//
// # Usage
//
// Metrics are exposed by mounting promhttp.Handler() on the metrics
// endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// To record metrics from other packages, use the exported variables:
//
//	metrics.SyncDirsVisited.Inc()
//	metrics.DBQueryDuration.WithLabelValues("search").Observe(0.012)
package metrics
