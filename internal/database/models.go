package database

import "path/filepath"

// EntryKind discriminates what an entry row represents.
type EntryKind string

const (
	// KindFile is a regular file; Size holds its length in bytes.
	KindFile EntryKind = "file"
	// KindDir is a directory; MtimeMS holds the last-synchronized
	// modification time, zero meaning never synchronized.
	KindDir EntryKind = "dir"
	// KindRoot is the marker row created for a synchronization root
	// itself. It is keyed (root_path, "") and is not a real filesystem
	// child; its MtimeMS plays the same role as a directory's.
	KindRoot EntryKind = "root"
)

// Entry is one row of the store: a file, a directory, or a root marker.
type Entry struct {
	Name       string    `json:"name"`
	ParentPath string    `json:"parentPath"`
	Kind       EntryKind `json:"kind"`
	Size       int64     `json:"size"`
	MtimeMS    int64     `json:"mtime"`
}

// Path returns the absolute path the entry describes.
func (e Entry) Path() string {
	if e.Name == "" {
		return e.ParentPath
	}
	return filepath.Join(e.ParentPath, e.Name)
}

type SortField string
type SortOrder string

const (
	SortByName  SortField = "name"
	SortByPath  SortField = "path"
	SortBySize  SortField = "size"
	SortByMtime SortField = "mtime"
	SortAsc     SortOrder = "asc"
	SortDesc    SortOrder = "desc"
)

// SortKey is one level of a multi-key sort order, highest priority first.
type SortKey struct {
	Field SortField
	Order SortOrder
}

// SearchOptions controls a store search.
type SearchOptions struct {
	// Query is a whitespace-separated set of substrings. An entry matches
	// when every substring occurs, case-insensitively, in the entry's
	// parent path joined with its name by the path separator.
	Query string

	// Sort lists sort keys in priority order. Empty means path ascending.
	Sort []SortKey

	// Limit bounds the number of rows the iterator will yield; zero means
	// unbounded. Offset skips rows before the first yielded one.
	Limit  int
	Offset int
}

// Stats summarizes the store contents.
type Stats struct {
	TotalFiles  int   `json:"totalFiles"`
	TotalDirs   int   `json:"totalDirs"`
	TotalBytes  int64 `json:"totalBytes"`
	PendingDirs int   `json:"pendingDirs"`
}
