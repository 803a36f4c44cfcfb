package memory

import (
	"runtime/debug"
	"testing"
)

// resetMemoryLimit restores the runtime default after a test sets it.
func resetMemoryLimit(t *testing.T) {
	t.Helper()
	original := debug.SetMemoryLimit(-1)
	t.Cleanup(func() {
		debug.SetMemoryLimit(original)
	})
}

func TestConfigureFromEnvUnset(t *testing.T) {
	resetMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")

	result := ConfigureFromEnv()
	if result.Configured {
		t.Error("Expected not configured with no environment")
	}
	if result.Source != "none" {
		t.Errorf("Expected source none, got %q", result.Source)
	}
}

func TestConfigureFromEnvMemoryLimit(t *testing.T) {
	resetMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1073741824") // 1 GiB
	t.Setenv("MEMORY_RATIO", "")

	result := ConfigureFromEnv()
	if !result.Configured {
		t.Fatal("Expected configured from MEMORY_LIMIT")
	}
	if result.Source != "MEMORY_LIMIT" {
		t.Errorf("Expected source MEMORY_LIMIT, got %q", result.Source)
	}
	if result.ContainerLimit != 1073741824 {
		t.Errorf("Unexpected container limit: %d", result.ContainerLimit)
	}
	limit := float64(1073741824)
	want := int64(limit * DefaultMemoryRatio)
	if result.GoMemLimit != want {
		t.Errorf("Expected GOMEMLIMIT %d, got %d", want, result.GoMemLimit)
	}
	if got := debug.SetMemoryLimit(-1); got != want {
		t.Errorf("Runtime limit not applied: got %d, want %d", got, want)
	}
}

func TestConfigureFromEnvCustomRatio(t *testing.T) {
	resetMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1000000000")
	t.Setenv("MEMORY_RATIO", "0.5")

	result := ConfigureFromEnv()
	if result.Ratio != 0.5 {
		t.Errorf("Expected ratio 0.5, got %v", result.Ratio)
	}
	if result.GoMemLimit != 500000000 {
		t.Errorf("Expected GOMEMLIMIT 500000000, got %d", result.GoMemLimit)
	}
}

func TestConfigureFromEnvBadValues(t *testing.T) {
	resetMemoryLimit(t)

	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_RATIO", "")
	t.Setenv("MEMORY_LIMIT", "not-a-number")
	if result := ConfigureFromEnv(); result.Configured {
		t.Error("Expected not configured for unparseable MEMORY_LIMIT")
	}

	t.Setenv("MEMORY_LIMIT", "1000000000")
	t.Setenv("MEMORY_RATIO", "7.5") // out of range, falls back
	result := ConfigureFromEnv()
	if result.Ratio != DefaultMemoryRatio {
		t.Errorf("Expected default ratio for out-of-range value, got %v", result.Ratio)
	}
}
