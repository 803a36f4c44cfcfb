package metrics

import (
	"os"
	"time"

	"filefinder/internal/logging"
)

// StatsProvider supplies current index statistics for the collector.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the index contents reported by a StatsProvider.
type Stats struct {
	TotalFiles  int
	TotalDirs   int
	TotalBytes  int64
	PendingDirs int
}

// Collector periodically collects index statistics and database file sizes
// and updates the corresponding gauges.
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider != nil {
		stats := c.statsProvider.GetStats()

		IndexFilesTotal.Set(float64(stats.TotalFiles))
		IndexDirsTotal.Set(float64(stats.TotalDirs))
		IndexBytesTotal.Set(float64(stats.TotalBytes))
		IndexPendingDirs.Set(float64(stats.PendingDirs))
	}

	c.collectDBSizes()
}

// collectDBSizes records the on-disk sizes of the SQLite main, WAL and SHM
// files. Missing files report zero (the WAL may have been checkpointed away).
func (c *Collector) collectDBSizes() {
	if c.dbPath == "" {
		return
	}

	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}

	for label, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				logging.Debug("Failed to stat %s database file: %v", label, err)
			}
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
