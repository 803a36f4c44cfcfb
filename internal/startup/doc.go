// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - ROOTS: Comma-separated list of directory roots to synchronize (default: /data)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SYNC_INTERVAL: Periodic re-sync interval as Go duration (default: 30m)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// MEMORY_LIMIT, MEMORY_RATIO and GOMEMLIMIT are read separately by the
// memory package before configuration loads.
//
// # Directory Setup
//
// The database directory is required and must be writable; it is created
// if missing. Roots are normalized to clean absolute paths but only
// checked with a warning, since they may be mounted after startup.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
package startup
