package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"filefinder/internal/logging"
	"filefinder/internal/metrics"
)

// Default timeout for database operations outside a sync run
const defaultTimeout = 5 * time.Second

// ErrStoreUnavailable means the store could not be opened or created.
// Fatal at startup.
var ErrStoreUnavailable = errors.New("entry store unavailable")

// Store manages the persisted entry table and its connections.
type Store struct {
	db     *sql.DB
	dbPath string

	// writer is the single dedicated write connection. All mutation goes
	// through a SyncTx on this connection; writeMu keeps it to one SyncTx
	// at a time.
	writer  *sql.Conn
	writeMu sync.Mutex
}

// New opens (creating if needed) the entry store at dbPath. The parent
// directory must exist and be writable. Returns ErrStoreUnavailable when
// the file cannot be opened or is not a usable database.
func New(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Entry store path: %s", dbPath)

	// WAL so the long-lived read cursor and the writer make progress
	// concurrently; busy_timeout prevents "database is locked" errors
	// around checkpoints.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStoreUnavailable, dbPath, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close store after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close store after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("%w: schema: %v", ErrStoreUnavailable, err)
	}

	writer, err := db.Conn(ctx)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close store after writer acquire failure: %v", closeErr)
		}
		return nil, fmt.Errorf("%w: writer connection: %v", ErrStoreUnavailable, err)
	}
	s.writer = writer

	logging.Info("Entry store initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	-- One row per filesystem object, keyed by containing directory + name.
	-- A root marker is keyed (root_path, '').
	CREATE TABLE IF NOT EXISTS entries (
		parent_path TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('file', 'dir', 'root')),
		size INTEGER NOT NULL DEFAULT 0,
		mtime INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (parent_path, name)
	) WITHOUT ROWID;

	CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(name);
	CREATE INDEX IF NOT EXISTS idx_entries_mtime ON entries(mtime);
	CREATE INDEX IF NOT EXISTS idx_entries_path_stat ON entries(parent_path, name, size, mtime);
	CREATE INDEX IF NOT EXISTS idx_entries_size_path ON entries(size, parent_path, name, mtime);

	-- Work-set of discovered directories that own no child rows yet
	-- (never synchronized, or synchronized and currently empty). The
	-- traversal driver merges this with the cursor stream so such
	-- directories are still visited.
	CREATE TABLE IF NOT EXISTS pending_dirs (
		path TEXT PRIMARY KEY
	) WITHOUT ROWID;
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close releases the writer connection and the pool.
func (s *Store) Close() error {
	var errs []error
	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			errs = append(errs, err)
		}
		s.writer = nil
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Path returns the on-disk location of the store.
func (s *Store) Path() string {
	return s.dbPath
}

// GetEntry is a point lookup by key against committed state. Returns
// (nil, nil) when no row exists.
func (s *Store) GetEntry(ctx context.Context, parentPath, name string) (*Entry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_entry", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var e Entry
	err = s.db.QueryRowContext(ctx,
		`SELECT parent_path, name, kind, size, mtime FROM entries WHERE parent_path = ? AND name = ?`,
		parentPath, name,
	).Scan(&e.ParentPath, &e.Name, &e.Kind, &e.Size, &e.MtimeMS)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (s *Store) UpdateDBMetrics() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}
