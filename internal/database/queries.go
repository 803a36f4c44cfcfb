package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"filefinder/internal/metrics"
)

// sortColumns maps a sort field to its ORDER BY column list.
var sortColumns = map[SortField]string{
	SortByName:  "name",
	SortByPath:  "parent_path, name",
	SortBySize:  "size",
	SortByMtime: "mtime",
}

// EntryIterator is a forward-only stream of search results. Callers loop
// with Next and must Close when done (early exit included).
type EntryIterator struct {
	rows  *sql.Rows
	count int
}

// Next returns the next matching entry, or ok=false at end of results.
func (it *EntryIterator) Next() (Entry, bool, error) {
	if it.rows == nil {
		return Entry{}, false, nil
	}
	if !it.rows.Next() {
		err := it.rows.Err()
		it.rows = nil
		return Entry{}, false, err
	}
	var e Entry
	if err := it.rows.Scan(&e.ParentPath, &e.Name, &e.Kind, &e.Size, &e.MtimeMS); err != nil {
		return Entry{}, false, fmt.Errorf("scan search result: %w", err)
	}
	it.count++
	return e, true, nil
}

// Close releases the underlying result set.
func (it *EntryIterator) Close() error {
	if it.rows == nil {
		return nil
	}
	err := it.rows.Close()
	it.rows = nil
	return err
}

// Count returns how many entries Next has yielded so far.
func (it *EntryIterator) Count() int {
	return it.count
}

// Search streams entries whose full path contains every whitespace
// separated word of the query, case-insensitively. An empty query matches
// everything. Root marker rows are never returned.
func (s *Store) Search(ctx context.Context, opts SearchOptions) (*EntryIterator, error) {
	start := time.Now()

	var sb strings.Builder
	sb.WriteString(`SELECT parent_path, name, kind, size, mtime FROM entries WHERE kind != 'root'`)

	sep := string(os.PathSeparator)
	var args []interface{}
	for _, word := range strings.Fields(opts.Query) {
		sb.WriteString(` AND instr(lower(parent_path || ? || name), lower(?)) > 0`)
		args = append(args, sep, word)
	}

	sb.WriteString(` ORDER BY `)
	sb.WriteString(buildOrderClause(opts.Sort))

	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = -1 // no limit, offset only
		}
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	recordQuery("search", start, err)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}

	return &EntryIterator{rows: rows}, nil
}

func buildOrderClause(keys []SortKey) string {
	if len(keys) == 0 {
		return "parent_path ASC, name ASC"
	}
	var parts []string
	for _, key := range keys {
		cols, ok := sortColumns[key.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if key.Order == SortDesc {
			dir = "DESC"
		}
		for _, col := range strings.Split(cols, ", ") {
			parts = append(parts, col+" "+dir)
		}
	}
	if len(parts) == 0 {
		return "parent_path ASC, name ASC"
	}
	// Tie-break on the primary key for a deterministic order.
	parts = append(parts, "parent_path ASC", "name ASC")
	return strings.Join(parts, ", ")
}

// GetStats returns aggregate counts over the stored tree.
func (s *Store) GetStats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var stats Stats

	queries := []struct {
		name  string
		query string
		dest  interface{}
	}{
		{"total_files", `SELECT COUNT(*) FROM entries WHERE kind = 'file'`, &stats.TotalFiles},
		{"total_dirs", `SELECT COUNT(*) FROM entries WHERE kind = 'dir'`, &stats.TotalDirs},
		{"total_bytes", `SELECT COALESCE(SUM(size), 0) FROM entries WHERE kind = 'file'`, &stats.TotalBytes},
		{"pending_dirs", `SELECT COUNT(*) FROM pending_dirs`, &stats.PendingDirs},
	}

	for _, q := range queries {
		start := time.Now()
		err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest)
		recordQuery(q.name, start, err)
		if err != nil {
			// Partial stats are better than none.
			continue
		}
	}

	metrics.IndexFilesTotal.Set(float64(stats.TotalFiles))
	metrics.IndexDirsTotal.Set(float64(stats.TotalDirs))
	metrics.IndexBytesTotal.Set(float64(stats.TotalBytes))
	metrics.IndexPendingDirs.Set(float64(stats.PendingDirs))

	return stats
}

// CountEntries returns the number of file and directory rows in the store.
func (s *Store) CountEntries(ctx context.Context) (int, error) {
	start := time.Now()
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE kind != 'root'`,
	).Scan(&n)
	recordQuery("count_entries", start, err)
	return n, err
}
