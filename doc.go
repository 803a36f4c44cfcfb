// Package main provides the entry point for the FileFinder service.
//
// FileFinder maintains a persistent, queryable index of one or more
// filesystem trees in SQLite and serves substring search over it via a
// small HTTP API. Instead of rescanning everything on each pass, the
// synchronizer walks each root in stored order, skips directories whose
// modification time has not moved, and reconciles the rest against the
// index with a sorted merge.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Memory Configuration: Sets GOMEMLIMIT from the container limit
//  2. Configuration Loading: Reads environment variables and validates
//     the root list and database directory
//  3. Store Initialization: Opens the SQLite database in WAL mode and
//     applies the schema
//  4. Component Initialization:
//     - Syncer: Reconciles each configured root against the index
//     - Indexer: Runs the initial sync and schedules periodic re-syncs
//     - Metrics Collector: Gathers Prometheus metrics
//  5. HTTP Server Setup: Configures routes, middleware, and starts serving
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM, stops all components cleanly
//
// # Background Services
//
// Several goroutines run throughout the application lifecycle:
//
//   - Indexer: Periodically re-synchronizes the configured roots
//   - Metrics Collector: Updates index and database-size gauges
//   - Metrics Server: Serves /metrics on a separate port (if enabled)
//
// # Configuration
//
// All configuration comes from environment variables; see
// internal/startup for the full list. The most important ones:
//
//   - ROOTS: Comma-separated list of directories to index (default: /data)
//   - DATABASE_DIR: Directory for the SQLite database (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - SYNC_INTERVAL: Time between periodic re-syncs (default: 30m)
package main
