package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filefinder/internal/database"
	"filefinder/internal/fswalk"
	"filefinder/internal/syncer"
)

func setupIndexerTest(t *testing.T) (*database.Store, string, *syncer.Syncer) {
	t.Helper()

	store, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})

	root := filepath.Join(t.TempDir(), "root")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatalf("Failed to create root: %v", err)
	}

	return store, root, syncer.New(store, fswalk.OS{})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestInitialSyncMakesReady(t *testing.T) {
	t.Parallel()

	store, root, s := setupIndexerTest(t)

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	idx := New(s, []string{root}, 0)
	if idx.IsReady() {
		t.Error("Expected not ready before Start")
	}

	idx.Start()
	defer idx.Stop()

	waitFor(t, "initial sync", idx.IsReady)

	status := idx.GetHealthStatus()
	if !status.Ready {
		t.Error("Expected ready health status")
	}
	if status.LastResult == nil || status.LastResult.Inserted != 1 {
		t.Errorf("Expected 1 insert in last result, got %+v", status.LastResult)
	}
	if status.LastError != "" {
		t.Errorf("Expected no error, got %q", status.LastError)
	}

	n, err := store.CountEntries(context.Background())
	if err != nil {
		t.Fatalf("CountEntries failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 stored entry, got %d", n)
	}
}

func TestBadRootReportsError(t *testing.T) {
	t.Parallel()

	_, _, s := setupIndexerTest(t)

	idx := New(s, []string{filepath.Join(t.TempDir(), "missing")}, 0)
	idx.Start()
	defer idx.Stop()

	waitFor(t, "initial sync", idx.IsReady)

	if status := idx.GetHealthStatus(); status.LastError == "" {
		t.Error("Expected last error for a missing root")
	}
}

func TestTriggerSyncPicksUpChanges(t *testing.T) {
	t.Parallel()

	store, root, s := setupIndexerTest(t)

	idx := New(s, []string{root}, 0)
	idx.Start()
	defer idx.Stop()
	waitFor(t, "initial sync", idx.IsReady)

	if err := os.WriteFile(filepath.Join(root, "late.txt"), []byte("late"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(root, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if err := idx.TriggerSync(); err != nil {
		t.Fatalf("TriggerSync failed: %v", err)
	}

	waitFor(t, "triggered sync", func() bool {
		n, err := store.CountEntries(context.Background())
		return err == nil && n == 1
	})
}

func TestOnSyncCompleteCallback(t *testing.T) {
	t.Parallel()

	_, root, s := setupIndexerTest(t)

	done := make(chan struct{}, 1)
	idx := New(s, []string{root}, 0)
	idx.SetOnSyncComplete(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	idx.Start()
	defer idx.Stop()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Callback never invoked")
	}
}
