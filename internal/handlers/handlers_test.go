package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filefinder/internal/database"
	"filefinder/internal/fswalk"
	"filefinder/internal/indexer"
	"filefinder/internal/startup"
	"filefinder/internal/syncer"
)

type testEnv struct {
	store   *database.Store
	indexer *indexer.Indexer
	h       *Handlers
	root    string
}

// setupHandlersTest builds a store synchronized against a small real tree
// and handlers over it. The indexer is created but not started; tests that
// need readiness start it themselves.
func setupHandlersTest(t *testing.T) *testEnv {
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
	for _, dir := range []string{root, filepath.Join(root, "photos")} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("Failed to mkdir %s: %v", dir, err)
		}
	}
	files := map[string]string{
		"notes.txt":             "some notes",
		"photos/beach.jpg":      "jpegdata",
		"photos/mountain.jpeg":  "jpegdata plus",
		"photos/beach-pano.jpg": "wide jpegdata",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	s := syncer.New(store, fswalk.OS{})
	if _, err := s.SyncAll(context.Background(), []string{root}); err != nil {
		t.Fatalf("Initial sync failed: %v", err)
	}

	idx := indexer.New(s, []string{root}, 0)
	t.Cleanup(idx.Stop)

	config := &startup.Config{Roots: []string{root}}
	return &testEnv{
		store:   store,
		indexer: idx,
		h:       New(store, idx, config),
		root:    root,
	}
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSearch(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	tests := []struct {
		name      string
		url       string
		wantCode  int
		wantNames []string
	}{
		{
			name:      "word matches files",
			url:       "/api/search?q=beach",
			wantCode:  http.StatusOK,
			wantNames: []string{"beach-pano.jpg", "beach.jpg"},
		},
		{
			name:      "all words must match",
			url:       "/api/search?q=photos+beach",
			wantCode:  http.StatusOK,
			wantNames: []string{"beach-pano.jpg", "beach.jpg"},
		},
		{
			name:      "empty query lists everything",
			url:       "/api/search",
			wantCode:  http.StatusOK,
			wantNames: []string{"notes.txt", "photos", "beach-pano.jpg", "beach.jpg", "mountain.jpeg"},
		},
		{
			name:      "sort by size descending",
			url:       "/api/search?q=photos&sort=size:desc",
			wantCode:  http.StatusOK,
			wantNames: []string{"beach-pano.jpg", "mountain.jpeg", "beach.jpg", "photos"},
		},
		{
			name:      "pagination",
			url:       "/api/search?q=beach&page=2&pageSize=1",
			wantCode:  http.StatusOK,
			wantNames: []string{"beach.jpg"},
		},
		{
			name:     "invalid sort field",
			url:      "/api/search?sort=color",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid sort order",
			url:      "/api/search?sort=name:sideways",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, env.h.Search, http.MethodGet, tt.url)
			if rec.Code != tt.wantCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var result SearchResult
			if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if result.Count != len(tt.wantNames) {
				t.Fatalf("Expected %d items %v, got %d: %+v", len(tt.wantNames), tt.wantNames, result.Count, result.Items)
			}
			for i, want := range tt.wantNames {
				if result.Items[i].Name != want {
					t.Errorf("Item %d: expected %q, got %q", i, want, result.Items[i].Name)
				}
			}
		})
	}
}

func TestSearchItemFields(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	rec := doRequest(t, env.h.Search, http.MethodGet, "/api/search?q=notes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var result SearchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result.Items))
	}

	item := result.Items[0]
	if item.Path != filepath.Join(env.root, "notes.txt") {
		t.Errorf("Unexpected path: %s", item.Path)
	}
	if item.Kind != "file" {
		t.Errorf("Expected kind file, got %s", item.Kind)
	}
	if item.Size != int64(len("some notes")) {
		t.Errorf("Unexpected size: %d", item.Size)
	}
	if item.SizeHuman == "" {
		t.Error("Expected human-readable size")
	}
	if item.Modified == "" {
		t.Error("Expected modified timestamp")
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	rec := doRequest(t, env.h.GetStats, http.MethodGet, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var stats StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.TotalFiles != 4 {
		t.Errorf("Expected 4 files, got %d", stats.TotalFiles)
	}
	if stats.TotalDirs != 1 {
		t.Errorf("Expected 1 dir, got %d", stats.TotalDirs)
	}
	if stats.TotalBytesHuman == "" {
		t.Error("Expected human-readable total")
	}
	if len(stats.Roots) != 1 || stats.Roots[0] != env.root {
		t.Errorf("Unexpected roots: %v", stats.Roots)
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	rec := doRequest(t, env.h.GetVersion, http.MethodGet, "/api/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var info startup.BuildInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Version == "" || info.GoVersion == "" {
		t.Errorf("Expected populated build info, got %+v", info)
	}
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	rec := doRequest(t, env.h.LivenessCheck, http.MethodGet, "/healthz/live")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected body for GET")
	}

	rec = doRequest(t, env.h.LivenessCheck, http.MethodHead, "/healthz/live")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for HEAD, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("Expected empty body for HEAD")
	}
}

func TestReadinessLifecycle(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	rec := doRequest(t, env.h.ReadinessCheck, http.MethodGet, "/healthz/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before initial sync, got %d", rec.Code)
	}

	env.indexer.Start()
	deadline := time.Now().Add(10 * time.Second)
	for !env.indexer.IsReady() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	rec = doRequest(t, env.h.ReadinessCheck, http.MethodGet, "/healthz/ready")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 after initial sync, got %d", rec.Code)
	}

	rec = doRequest(t, env.h.HealthCheck, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 health, got %d", rec.Code)
	}
	var health HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health.Status != statusHealthy {
		t.Errorf("Expected healthy status, got %s", health.Status)
	}
	if health.TotalFiles != 4 {
		t.Errorf("Expected 4 files in health summary, got %d", health.TotalFiles)
	}
}

func TestHealthCheckNotReady(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	rec := doRequest(t, env.h.HealthCheck, http.MethodGet, "/healthz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 before initial sync, got %d", rec.Code)
	}

	var health HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health.Status != statusStarting {
		t.Errorf("Expected starting status, got %s", health.Status)
	}
}

func TestTriggerSyncEndpoint(t *testing.T) {
	t.Parallel()

	env := setupHandlersTest(t)

	rec := doRequest(t, env.h.TriggerSync, http.MethodPost, "/api/sync")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, env.h.SyncStatus, http.MethodGet, "/api/sync")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from status, got %d", rec.Code)
	}
}
