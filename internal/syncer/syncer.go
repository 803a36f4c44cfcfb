package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filefinder/internal/database"
	"filefinder/internal/fswalk"
	"filefinder/internal/logging"
	"filefinder/internal/metrics"
)

// ErrRootNotFound means a configured root neither exists on disk nor has
// any previously stored state to clean up.
var ErrRootNotFound = errors.New("root directory not found")

// EventType identifies a progress event.
type EventType string

const (
	EventRootStarted  EventType = "root_started"
	EventDirVisited   EventType = "dir_visited"
	EventDirSkipped   EventType = "dir_skipped"
	EventRootFinished EventType = "root_finished"
)

// Event reports sync progress. Dir is empty for root-level events.
type Event struct {
	Type EventType
	Root string
	Dir  string
}

// Progress receives events during a run. Callbacks happen on the sync
// goroutine and should return quickly.
type Progress func(Event)

// Result summarizes what one run changed.
type Result struct {
	Inserted    int   `json:"inserted"`
	Deleted     int   `json:"deleted"`
	Updated     int   `json:"updated"`
	DirsVisited int   `json:"dirs_visited"`
	DirsSkipped int   `json:"dirs_skipped"`
	Commits     int   `json:"commits"`
	Writes      int64 `json:"writes"`
}

func (r *Result) add(other Result) {
	r.Inserted += other.Inserted
	r.Deleted += other.Deleted
	r.Updated += other.Updated
	r.DirsVisited += other.DirsVisited
	r.DirsSkipped += other.DirsSkipped
	r.Commits += other.Commits
	r.Writes += other.Writes
}

// Syncer synchronizes filesystem roots into an entry store.
type Syncer struct {
	store    *database.Store
	fs       fswalk.FS
	progress Progress
}

// New creates a Syncer over the given store and filesystem.
func New(store *database.Store, fs fswalk.FS) *Syncer {
	return &Syncer{store: store, fs: fs}
}

// SetProgress installs a progress callback. Must be called before any run.
func (s *Syncer) SetProgress(fn Progress) {
	s.progress = fn
}

func (s *Syncer) emit(ev Event) {
	if s.progress != nil {
		s.progress(ev)
	}
}

// NormalizeRoot expands a leading ~, makes the path absolute and cleans
// it. All stored paths derive from the normalized form.
func NormalizeRoot(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", path, err)
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolutize %q: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// SyncAll runs SyncRoot for each root in turn and returns the combined
// result. The first root that fails aborts the run; earlier roots keep
// their committed progress.
func (s *Syncer) SyncAll(ctx context.Context, roots []string) (Result, error) {
	start := time.Now()
	metrics.SyncRunsTotal.Inc()
	metrics.SyncIsRunning.Set(1)
	defer func() {
		metrics.SyncIsRunning.Set(0)
		metrics.SyncLastRunTimestamp.SetToCurrentTime()
		metrics.SyncLastRunDuration.Set(time.Since(start).Seconds())
	}()

	var total Result
	for _, root := range roots {
		result, err := s.SyncRoot(ctx, root)
		total.add(result)
		if err != nil {
			metrics.SyncErrors.Inc()
			return total, fmt.Errorf("sync %s: %w", root, err)
		}
	}

	logging.Info("Sync complete in %v: %d visited, %d skipped, +%d/-%d/~%d entries",
		time.Since(start).Round(time.Millisecond),
		total.DirsVisited, total.DirsSkipped,
		total.Inserted, total.Deleted, total.Updated)
	return total, nil
}

// SyncRoot brings the stored subtree of one root up to date with disk.
func (s *Syncer) SyncRoot(ctx context.Context, root string) (Result, error) {
	normalized, err := NormalizeRoot(root)
	if err != nil {
		return Result{}, err
	}

	sess, err := s.newSession(ctx, normalized)
	if err != nil {
		return Result{}, err
	}

	s.emit(Event{Type: EventRootStarted, Root: normalized})
	err = sess.close(sess.run())
	result := sess.result
	if err == nil {
		s.emit(Event{Type: EventRootFinished, Root: normalized})
	}
	return result, err
}
