// Package database implements the persisted entry store backing the
// filefinder index.
//
// The store is a SQLite database in WAL mode holding one row per filesystem
// object, keyed by (parent_path, name), plus a pending_dirs work-set of
// discovered directories that do not yet own any child rows. Three kinds of
// access run concurrently:
//
//   - the query pool, serving point lookups, search and statistics;
//   - a single dedicated writer connection used by the synchronizer through
//     [Store.BeginSync], with deferred batched commits;
//   - a dedicated read-cursor connection ([Store.OpenCursor]) holding a
//     long-lived read transaction, so the traversal driver iterates a
//     consistent snapshot that never includes the writer's uncommitted or
//     freshly committed rows until the cursor is explicitly refreshed.
//
// WAL mode is what makes the third point workable: the snapshot reader and
// the writer make progress concurrently, and a crash between commits can
// lose batched work but never leaves a half-applied statement behind.
package database
