package fswalk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func TestReadDirSortedOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Deliberately created out of order; names chosen so byte order and
	// case-insensitive order disagree.
	names := []string{"zebra.txt", "Apple.txt", "banana.txt", "AA", "aa"}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	children, err := OS{}.ReadDirSorted(dir)
	if err != nil {
		t.Fatalf("ReadDirSorted: %v", err)
	}

	if len(children) != len(names) {
		t.Fatalf("got %d children, want %d", len(children), len(names))
	}

	got := make([]string, len(children))
	for i, c := range children {
		got[i] = c.Name
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("children not in ascending byte order: %v", got)
	}
	// Byte order puts uppercase before lowercase
	if got[0] != "AA" || got[len(got)-1] != "zebra.txt" {
		t.Errorf("unexpected ordering: %v", got)
	}
}

func TestReadDirSortedMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file.bin"), make([]byte, 123), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	children, err := OS{}.ReadDirSorted(dir)
	if err != nil {
		t.Fatalf("ReadDirSorted: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}

	file := children[0]
	sub := children[1]

	if file.Name != "file.bin" || file.IsDir {
		t.Errorf("unexpected file child: %+v", file)
	}
	if file.Size != 123 {
		t.Errorf("file size = %d, want 123", file.Size)
	}
	if file.MtimeMS <= 0 {
		t.Errorf("file mtime = %d, want > 0", file.MtimeMS)
	}

	if sub.Name != "sub" || !sub.IsDir {
		t.Errorf("unexpected dir child: %+v", sub)
	}
	if sub.Size != 0 {
		t.Errorf("dir size = %d, want 0", sub.Size)
	}
}

func TestReadDirSortedNotFound(t *testing.T) {
	t.Parallel()

	_, err := OS{}.ReadDirSorted(filepath.Join(t.TempDir(), "gone"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestStatDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	st, err := OS{}.StatDir(dir)
	if err != nil {
		t.Fatalf("StatDir: %v", err)
	}
	if st.MtimeMS <= 0 {
		t.Errorf("MtimeMS = %d, want > 0", st.MtimeMS)
	}

	// A file where a directory is expected reads as not-found
	filePath := filepath.Join(dir, "notadir")
	if err := os.WriteFile(filePath, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := (OS{}).StatDir(filePath); !IsNotFound(err) {
		t.Errorf("StatDir on file: err = %v, want not-found", err)
	}

	if _, err := (OS{}).StatDir(filepath.Join(dir, "gone")); !IsNotFound(err) {
		t.Errorf("StatDir on missing: err = %v, want not-found", err)
	}
}

func TestStatDirMtimeAdvancesOnChildCreate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	before, err := OS{}.StatDir(dir)
	if err != nil {
		t.Fatalf("StatDir: %v", err)
	}

	// Directory mtimes can have coarse granularity; force a visible step.
	past := time.Now().Add(-2 * time.Second)
	if err := os.Chtimes(dir, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	before, err = OS{}.StatDir(dir)
	if err != nil {
		t.Fatalf("StatDir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	after, err := OS{}.StatDir(dir)
	if err != nil {
		t.Fatalf("StatDir: %v", err)
	}
	if after.MtimeMS <= before.MtimeMS {
		t.Errorf("directory mtime did not advance on child create: before=%d after=%d",
			before.MtimeMS, after.MtimeMS)
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"ErrNotExist", fs.ErrNotExist, true},
		{"wrapped ErrNotExist", fmt.Errorf("stat: %w", fs.ErrNotExist), true},
		{"permission", fs.ErrPermission, false},
		{"other", errors.New("network unreachable"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
