package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filefinder/internal/metrics"
)

const cursorSelect = `SELECT parent_path, name, kind, size, mtime FROM entries `

// Cursor streams entry rows in (parent_path, name) order from a stable
// snapshot. It holds its own connection inside a deferred transaction, so
// rows committed by the writer after the cursor's first read stay
// invisible until Refresh.
type Cursor struct {
	ctx  context.Context
	conn *sql.Conn
	tx   *sql.Tx
	rows *sql.Rows
}

// OpenCursor starts a snapshot read cursor. The snapshot is taken lazily
// at the first Seek. Callers position it with Seek or SeekPast before
// calling Next, and must Close it when done.
func (s *Store) OpenCursor(ctx context.Context) (*Cursor, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire cursor connection: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, errors.Join(err, closeErr)
		}
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}

	return &Cursor{ctx: ctx, conn: conn, tx: tx}, nil
}

// Seek positions the cursor at the first row with key >= (parentPath, name).
func (c *Cursor) Seek(parentPath, name string) error {
	if err := c.closeRows(); err != nil {
		return err
	}
	rows, err := c.tx.QueryContext(c.ctx,
		cursorSelect+`WHERE parent_path > ?1 OR (parent_path = ?1 AND name >= ?2) ORDER BY parent_path, name`,
		parentPath, name,
	)
	if err != nil {
		return fmt.Errorf("cursor seek: %w", err)
	}
	c.rows = rows
	return nil
}

// SeekPast positions the cursor at the first row whose parent_path sorts
// strictly after parentPath, skipping the remainder of that group.
func (c *Cursor) SeekPast(parentPath string) error {
	if err := c.closeRows(); err != nil {
		return err
	}
	rows, err := c.tx.QueryContext(c.ctx,
		cursorSelect+`WHERE parent_path > ? ORDER BY parent_path, name`,
		parentPath,
	)
	if err != nil {
		return fmt.Errorf("cursor seek past: %w", err)
	}
	c.rows = rows
	return nil
}

// Next returns the row under the cursor and advances. ok is false when the
// stream is exhausted or the cursor is unpositioned.
func (c *Cursor) Next() (Entry, bool, error) {
	if c.rows == nil {
		return Entry{}, false, nil
	}
	if !c.rows.Next() {
		err := c.rows.Err()
		c.rows = nil
		return Entry{}, false, err
	}
	var e Entry
	if err := c.rows.Scan(&e.ParentPath, &e.Name, &e.Kind, &e.Size, &e.MtimeMS); err != nil {
		return Entry{}, false, fmt.Errorf("cursor scan: %w", err)
	}
	return e, true, nil
}

// Refresh discards the current snapshot and starts a new one, picking up
// everything the writer has committed. The cursor is left unpositioned;
// the caller must Seek again.
func (c *Cursor) Refresh() error {
	if err := c.closeRows(); err != nil {
		return err
	}
	// Read-only transaction, rollback and commit are equivalent.
	if err := c.tx.Rollback(); err != nil {
		return fmt.Errorf("end snapshot: %w", err)
	}
	tx, err := c.conn.BeginTx(c.ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	c.tx = tx
	metrics.SyncCursorRefreshes.Inc()
	return nil
}

// Close releases the snapshot and its connection.
func (c *Cursor) Close() error {
	var errs []error
	if err := c.closeRows(); err != nil {
		errs = append(errs, err)
	}
	if c.tx != nil {
		if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		c.tx = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, err)
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}

func (c *Cursor) closeRows() error {
	if c.rows == nil {
		return nil
	}
	err := c.rows.Close()
	c.rows = nil
	return err
}
