package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"filefinder/internal/logging"
	"filefinder/internal/syncer"
)

// ErrSyncInProgress is returned by TriggerSync while a run is active.
var ErrSyncInProgress = errors.New("sync already in progress")

// Indexer owns the sync schedule: one initial run at startup, periodic
// re-runs, and manual triggers. Runs never overlap.
type Indexer struct {
	syncer   *syncer.Syncer
	roots    []string
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	mu                  sync.Mutex
	isSyncing           bool
	lastSyncTime        time.Time
	lastResult          syncer.Result
	lastError           error
	initialSyncComplete bool
	startTime           time.Time

	// Progress counters for the run in flight.
	dirsVisited atomic.Int64
	dirsSkipped atomic.Int64
	currentRoot atomic.Value

	// Callback after each successful run.
	onSyncComplete func()
}

// Progress describes the run in flight, if any.
type Progress struct {
	Syncing     bool   `json:"syncing"`
	CurrentRoot string `json:"currentRoot,omitempty"`
	DirsVisited int64  `json:"dirsVisited"`
	DirsSkipped int64  `json:"dirsSkipped"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready        bool           `json:"ready"`
	Syncing      bool           `json:"syncing"`
	StartTime    time.Time      `json:"startTime"`
	Uptime       string         `json:"uptime"`
	LastSynced   time.Time      `json:"lastSynced,omitempty"`
	LastError    string         `json:"lastError,omitempty"`
	LastResult   *syncer.Result `json:"lastResult,omitempty"`
	SyncProgress *Progress      `json:"syncProgress,omitempty"`
}

// New creates an Indexer for the given roots. The syncer's progress
// callback is claimed by the indexer.
func New(s *syncer.Syncer, roots []string, interval time.Duration) *Indexer {
	idx := &Indexer{
		syncer:    s,
		roots:     roots,
		interval:  interval,
		stopChan:  make(chan struct{}),
		startTime: time.Now(),
	}
	idx.currentRoot.Store("")
	s.SetProgress(idx.onEvent)
	return idx
}

func (idx *Indexer) onEvent(ev syncer.Event) {
	switch ev.Type {
	case syncer.EventRootStarted:
		idx.currentRoot.Store(ev.Root)
	case syncer.EventDirVisited:
		idx.dirsVisited.Add(1)
	case syncer.EventDirSkipped:
		idx.dirsSkipped.Add(1)
	}
}

// SetOnSyncComplete sets a callback invoked after each successful run.
// Must be called before Start.
func (idx *Indexer) SetOnSyncComplete(callback func()) {
	idx.onSyncComplete = callback
}

// Start launches the initial sync and the periodic schedule.
func (idx *Indexer) Start() {
	go func() {
		logging.Info("Starting initial sync in background...")
		if err := idx.runSync(); err != nil {
			logging.Error("Initial sync error: %v", err)
		}
		idx.mu.Lock()
		idx.initialSyncComplete = true
		idx.mu.Unlock()
	}()

	go idx.periodicSync()
}

// Stop halts the periodic schedule. A run in flight finishes on its own.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(func() {
		close(idx.stopChan)
	})
}

func (idx *Indexer) periodicSync() {
	if idx.interval <= 0 {
		logging.Info("Periodic sync disabled")
		return
	}

	ticker := time.NewTicker(idx.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := idx.runSync(); err != nil && !errors.Is(err, ErrSyncInProgress) {
				logging.Error("Periodic sync error: %v", err)
			}
		case <-idx.stopChan:
			logging.Info("Periodic sync stopped")
			return
		}
	}
}

// TriggerSync starts a run in the background. Returns ErrSyncInProgress
// if one is already active.
func (idx *Indexer) TriggerSync() error {
	idx.mu.Lock()
	if idx.isSyncing {
		idx.mu.Unlock()
		return ErrSyncInProgress
	}
	idx.mu.Unlock()

	go func() {
		if err := idx.runSync(); err != nil && !errors.Is(err, ErrSyncInProgress) {
			logging.Error("Triggered sync error: %v", err)
		}
	}()
	return nil
}

func (idx *Indexer) runSync() error {
	idx.mu.Lock()
	if idx.isSyncing {
		idx.mu.Unlock()
		return ErrSyncInProgress
	}
	idx.isSyncing = true
	idx.mu.Unlock()

	idx.dirsVisited.Store(0)
	idx.dirsSkipped.Store(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-idx.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := idx.syncer.SyncAll(ctx, idx.roots)

	idx.mu.Lock()
	idx.isSyncing = false
	idx.lastSyncTime = time.Now()
	idx.lastResult = result
	idx.lastError = err
	idx.mu.Unlock()
	idx.currentRoot.Store("")

	if err != nil {
		return err
	}

	if idx.onSyncComplete != nil {
		idx.onSyncComplete()
	}
	return nil
}

// IsReady reports whether the initial sync has finished, successfully or
// not. Readiness gates traffic, not correctness.
func (idx *Indexer) IsReady() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.initialSyncComplete
}

// GetProgress returns a snapshot of the run in flight.
func (idx *Indexer) GetProgress() Progress {
	idx.mu.Lock()
	syncing := idx.isSyncing
	idx.mu.Unlock()

	root, _ := idx.currentRoot.Load().(string)
	return Progress{
		Syncing:     syncing,
		CurrentRoot: root,
		DirsVisited: idx.dirsVisited.Load(),
		DirsSkipped: idx.dirsSkipped.Load(),
	}
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	status := HealthStatus{
		Ready:     idx.initialSyncComplete,
		Syncing:   idx.isSyncing,
		StartTime: idx.startTime,
		Uptime:    time.Since(idx.startTime).String(),
	}

	if !idx.lastSyncTime.IsZero() {
		status.LastSynced = idx.lastSyncTime
		result := idx.lastResult
		status.LastResult = &result
	}
	if idx.lastError != nil {
		status.LastError = idx.lastError.Error()
	}
	if idx.isSyncing {
		progress := Progress{
			Syncing:     true,
			DirsVisited: idx.dirsVisited.Load(),
			DirsSkipped: idx.dirsSkipped.Load(),
		}
		if root, ok := idx.currentRoot.Load().(string); ok {
			progress.CurrentRoot = root
		}
		status.SyncProgress = &progress
	}

	return status
}
