package startup

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROOTS", filepath.Join(dir, "data"))
	t.Setenv("DATABASE_DIR", filepath.Join(dir, "db"))

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", config.Port)
	}
	if config.MetricsPort != "9090" {
		t.Errorf("Expected default metrics port 9090, got %s", config.MetricsPort)
	}
	if !config.MetricsEnabled {
		t.Error("Expected metrics enabled by default")
	}
	if config.SyncInterval != 30*time.Minute {
		t.Errorf("Expected default sync interval 30m, got %v", config.SyncInterval)
	}
	if config.DatabasePath != filepath.Join(dir, "db", "filefinder.db") {
		t.Errorf("Unexpected database path: %s", config.DatabasePath)
	}
}

func TestLoadConfigInvalidIntervalFallsBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROOTS", dir)
	t.Setenv("DATABASE_DIR", filepath.Join(dir, "db"))
	t.Setenv("SYNC_INTERVAL", "not-a-duration")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.SyncInterval != 30*time.Minute {
		t.Errorf("Expected fallback interval 30m, got %v", config.SyncInterval)
	}
}

func TestParseRoots(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"single root", "/data", []string{"/data"}, false},
		{"multiple roots", "/data,/mnt/archive", []string{"/data", "/mnt/archive"}, false},
		{"whitespace and empties", " /data , ,/mnt/archive ", []string{"/data", "/mnt/archive"}, false},
		{"duplicates collapse", "/data,/data/,/data/.", []string{"/data"}, false},
		{"all empty", " , ,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRoots(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRoots(%q) failed: %v", tt.in, err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseRoots(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetBuildInfo(t *testing.T) {
	t.Parallel()

	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Expected non-empty version")
	}
	if info.GoVersion == "" {
		t.Error("Expected non-empty Go version")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be populated")
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL_VAR", "true")
	if !getEnvBool("TEST_BOOL_VAR", false) {
		t.Error("Expected true for 'true'")
	}

	t.Setenv("TEST_BOOL_VAR", "garbage")
	if getEnvBool("TEST_BOOL_VAR", false) {
		t.Error("Expected default for unparseable value")
	}

	if !getEnvBool("TEST_UNSET_BOOL_VAR", true) {
		t.Error("Expected default for unset variable")
	}
}
