// Package handlers implements the HTTP API: entry search, sync control,
// stats, and health/readiness/liveness probes.
package handlers
