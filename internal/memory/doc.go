// Package memory configures Go's soft memory limit from container
// metadata. In Kubernetes the memory limit is passed in via the Downward
// API as MEMORY_LIMIT; a fraction of it becomes GOMEMLIMIT so the runtime
// collects before the container is OOM-killed. An explicit GOMEMLIMIT
// environment variable always wins.
package memory
