package fswalk

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"filefinder/internal/logging"
)

// Timestamps outside this range are treated as corrupt and the entry is
// skipped. Some network filesystems hand out garbage mtimes.
var (
	minValidTime = time.Unix(0, 0)
	maxValidTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// ChildInfo describes one immediate child of a directory as observed on disk.
type ChildInfo struct {
	Name    string
	IsDir   bool
	Size    int64
	MtimeMS int64 // milliseconds since epoch
}

// DirStat describes a directory itself.
type DirStat struct {
	MtimeMS int64
}

// FS is the filesystem surface the synchronizer traverses. Implementations
// must return children in ascending byte order of name.
type FS interface {
	// StatDir stats a directory. Returns an error satisfying IsNotFound
	// when the directory no longer exists.
	StatDir(path string) (DirStat, error)

	// ReadDirSorted lists the immediate children of a directory, sorted
	// ascending by name (byte order, case-sensitive). Children whose
	// metadata cannot be read are skipped.
	ReadDirSorted(path string) ([]ChildInfo, error)
}

// OS is the real-filesystem implementation of FS.
type OS struct{}

// StatDir implements FS.
func (OS) StatDir(path string) (DirStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DirStat{}, err
	}
	if !info.IsDir() {
		// The path was replaced by a file since it was recorded as a
		// directory. Report not-found so the caller cascades deletion.
		return DirStat{}, fs.ErrNotExist
	}
	return DirStat{MtimeMS: clampMtime(info.ModTime())}, nil
}

// ReadDirSorted implements FS. os.ReadDir already returns entries sorted by
// filename in byte order.
func (OS) ReadDirSorted(path string) ([]ChildInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	children := make([]ChildInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// The child vanished between listing and stat, or its
			// metadata is unreadable. Skip it; the next pass will
			// pick it up if it still exists.
			if !errors.Is(err, fs.ErrNotExist) {
				logging.Warn("Skipping entry %s in %s: %v", entry.Name(), path, err)
			}
			continue
		}

		mtime := info.ModTime()
		if mtime.Before(minValidTime) || mtime.After(maxValidTime) {
			logging.Warn("Skipping entry %s in %s: corrupt timestamp %v", entry.Name(), path, mtime)
			continue
		}

		child := ChildInfo{
			Name:    entry.Name(),
			IsDir:   entry.IsDir(),
			MtimeMS: mtime.UnixMilli(),
		}
		if !entry.IsDir() {
			child.Size = info.Size()
		}
		children = append(children, child)
	}

	return children, nil
}

// IsNotFound reports whether err means the path does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func clampMtime(t time.Time) int64 {
	if t.Before(minValidTime) {
		return 0
	}
	return t.UnixMilli()
}
