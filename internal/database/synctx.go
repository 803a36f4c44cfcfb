package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"filefinder/internal/metrics"
)

// SyncTx is the synchronizer's handle on the write connection. It wraps a
// sequence of SQLite transactions: writes accumulate in the current
// transaction until Commit, which makes them durable and visible to new
// read snapshots, then transparently begins the next transaction. Exactly
// one SyncTx may be open at a time.
type SyncTx struct {
	store   *Store
	ctx     context.Context
	tx      *sql.Tx
	txStart time.Time
	writes  int64
	commits int
	done    bool
}

// BeginSync starts a write transaction sequence on the dedicated writer
// connection. The caller must finish with Close.
func (s *Store) BeginSync(ctx context.Context) (*SyncTx, error) {
	s.writeMu.Lock()

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("begin write transaction: %w", err)
	}

	return &SyncTx{
		store:   s,
		ctx:     ctx,
		tx:      tx,
		txStart: time.Now(),
	}, nil
}

// Writes returns the number of rows affected so far, across commits.
func (t *SyncTx) Writes() int64 {
	return t.writes
}

// Commits returns the number of commits performed so far, not counting the
// final one issued by Close.
func (t *SyncTx) Commits() int {
	return t.commits
}

// Commit makes all pending writes durable and begins a fresh transaction.
func (t *SyncTx) Commit() error {
	duration := time.Since(t.txStart).Seconds()

	if err := t.tx.Commit(); err != nil {
		metrics.DBCommitDuration.WithLabelValues("rollback").Observe(duration)
		return fmt.Errorf("commit: %w", err)
	}
	metrics.DBCommitDuration.WithLabelValues("commit").Observe(duration)
	t.commits++

	tx, err := t.store.writer.BeginTx(t.ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write transaction: %w", err)
	}
	t.tx = tx
	t.txStart = time.Now()
	return nil
}

// Close ends the transaction sequence. With a nil cause the pending writes
// are committed; otherwise they are rolled back and cause is returned.
func (t *SyncTx) Close(cause error) error {
	if t.done {
		return cause
	}
	t.done = true
	defer t.store.writeMu.Unlock()

	duration := time.Since(t.txStart).Seconds()

	if cause != nil {
		metrics.DBCommitDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := t.tx.Rollback(); rbErr != nil {
			return errors.Join(cause, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return cause
	}

	if err := t.tx.Commit(); err != nil {
		metrics.DBCommitDuration.WithLabelValues("rollback").Observe(duration)
		return fmt.Errorf("final commit: %w", err)
	}
	metrics.DBCommitDuration.WithLabelValues("commit").Observe(duration)
	return nil
}

func (t *SyncTx) exec(query string, args ...interface{}) (int64, error) {
	result, err := t.tx.ExecContext(t.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	t.writes += affected
	return affected, nil
}

// InsertEntry inserts or replaces one entry row. Replacement covers the
// case where a path changed kind between runs (file swapped for a
// directory of the same name).
func (t *SyncTx) InsertEntry(e Entry) error {
	_, err := t.exec(
		`INSERT OR REPLACE INTO entries (parent_path, name, kind, size, mtime) VALUES (?, ?, ?, ?, ?)`,
		e.ParentPath, e.Name, e.Kind, e.Size, e.MtimeMS,
	)
	if err == nil {
		metrics.SyncRowsWritten.WithLabelValues("insert").Inc()
	}
	return err
}

// DeleteEntry removes one entry row by key.
func (t *SyncTx) DeleteEntry(parentPath, name string) error {
	n, err := t.exec(
		`DELETE FROM entries WHERE parent_path = ? AND name = ?`,
		parentPath, name,
	)
	if err == nil && n > 0 {
		metrics.SyncRowsWritten.WithLabelValues("delete").Inc()
	}
	return err
}

// UpdateFileStat refreshes a stored file's size and mtime in place.
func (t *SyncTx) UpdateFileStat(parentPath, name string, size, mtimeMS int64) error {
	n, err := t.exec(
		`UPDATE entries SET size = ?, mtime = ? WHERE parent_path = ? AND name = ?`,
		size, mtimeMS, parentPath, name,
	)
	if err == nil && n > 0 {
		metrics.SyncRowsWritten.WithLabelValues("update").Inc()
	}
	return err
}

// UpdateMtime records a directory's last-synchronized modification time on
// its entry (or root marker) row.
func (t *SyncTx) UpdateMtime(parentPath, name string, mtimeMS int64) error {
	n, err := t.exec(
		`UPDATE entries SET mtime = ? WHERE parent_path = ? AND name = ?`,
		mtimeMS, parentPath, name,
	)
	if err == nil && n > 0 {
		metrics.SyncRowsWritten.WithLabelValues("update").Inc()
	}
	return err
}

// AddPending puts a directory in the pending work-set. Idempotent.
func (t *SyncTx) AddPending(path string) error {
	_, err := t.exec(`INSERT OR IGNORE INTO pending_dirs (path) VALUES (?)`, path)
	return err
}

// DeletePending removes a directory from the pending work-set.
func (t *SyncTx) DeletePending(path string) error {
	_, err := t.exec(`DELETE FROM pending_dirs WHERE path = ?`, path)
	return err
}

// GetEntry is a point lookup through the write transaction, so it observes
// this run's uncommitted writes. Returns (nil, nil) when no row exists.
func (t *SyncTx) GetEntry(parentPath, name string) (*Entry, error) {
	var e Entry
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT parent_path, name, kind, size, mtime FROM entries WHERE parent_path = ? AND name = ?`,
		parentPath, name,
	).Scan(&e.ParentPath, &e.Name, &e.Kind, &e.Size, &e.MtimeMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PendingUnder returns, in ascending path order, the pending directories
// that lie within the subtree rooted at root (root itself included).
func (t *SyncTx) PendingUnder(root, separator string) ([]string, error) {
	prefix := root
	if !strings.HasSuffix(prefix, separator) {
		prefix += separator
	}

	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT path FROM pending_dirs
		 WHERE path = ?1 OR substr(path, 1, length(?2)) = ?2
		 ORDER BY path`,
		root, prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
