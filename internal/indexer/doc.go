// Package indexer schedules synchronization runs over the configured
// roots. It runs an initial sync at startup, re-syncs on a fixed
// interval, accepts manual triggers from the API, and exposes readiness
// and progress for the health endpoints.
package indexer
