package syncer

import (
	"container/heap"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"filefinder/internal/database"
	"filefinder/internal/fswalk"
	"filefinder/internal/logging"
	"filefinder/internal/metrics"
)

// pathHeap is a min-heap of pending directory paths.
type pathHeap []string

func (h pathHeap) Len() int            { return len(h) }
func (h pathHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h pathHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x interface{}) { *h = append(*h, x.(string)) }
func (h *pathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// session carries the state of one root's run: the write transaction, the
// snapshot cursor with its one-row lookahead, and the pending work-set as
// a min-heap. Directories are visited in ascending path order by merging
// the cursor's parent-path stream with the heap.
type session struct {
	syncer *Syncer
	ctx    context.Context
	root   string
	prefix string // root plus trailing separator, for subtree checks
	sep    string

	tx        *database.SyncTx
	cur       *database.Cursor
	pending   pathHeap
	lookahead *database.Entry

	result Result
}

func (s *Syncer) newSession(ctx context.Context, root string) (*session, error) {
	sep := string(filepath.Separator)
	prefix := root
	if !strings.HasSuffix(prefix, sep) {
		prefix += sep
	}

	tx, err := s.store.BeginSync(ctx)
	if err != nil {
		return nil, err
	}

	sess := &session{
		syncer: s,
		ctx:    ctx,
		root:   root,
		prefix: prefix,
		sep:    sep,
		tx:     tx,
	}

	if err := sess.init(); err != nil {
		return nil, sess.tx.Close(err)
	}

	cur, err := s.store.OpenCursor(ctx)
	if err != nil {
		return nil, sess.tx.Close(err)
	}
	sess.cur = cur

	if err := cur.Seek(root, ""); err != nil {
		return nil, sess.close(err)
	}
	if err := sess.advance(); err != nil {
		return nil, sess.close(err)
	}
	return sess, nil
}

// init makes sure the root marker row exists, committing it immediately so
// a later crash still leaves the root resumable, and loads the pending
// work-set for the subtree.
func (sess *session) init() error {
	marker, err := sess.tx.GetEntry(sess.root, "")
	if err != nil {
		return err
	}
	if marker == nil {
		if _, err := sess.syncer.fs.StatDir(sess.root); err != nil {
			if fswalk.IsNotFound(err) {
				return fmt.Errorf("%w: %s", ErrRootNotFound, sess.root)
			}
			return err
		}
		logging.Info("Initializing new root %s", sess.root)
		if err := sess.tx.InsertEntry(database.Entry{
			ParentPath: sess.root,
			Kind:       database.KindRoot,
		}); err != nil {
			return err
		}
		if err := sess.tx.AddPending(sess.root); err != nil {
			return err
		}
		if err := sess.commit(); err != nil {
			return err
		}
	}

	paths, err := sess.tx.PendingUnder(sess.root, sess.sep)
	if err != nil {
		return err
	}
	sess.pending = pathHeap(paths)
	heap.Init(&sess.pending)
	return nil
}

func (sess *session) close(cause error) error {
	if sess.cur != nil {
		if err := sess.cur.Close(); err != nil && cause == nil {
			cause = err
		}
		sess.cur = nil
	}
	err := sess.tx.Close(cause)
	if err == nil {
		metrics.SyncCommits.Inc()
		sess.result.Commits = sess.tx.Commits() + 1
		sess.result.Writes = sess.tx.Writes()
	}
	return err
}

func (sess *session) commit() error {
	if err := sess.tx.Commit(); err != nil {
		return err
	}
	metrics.SyncCommits.Inc()
	return nil
}

// advance pulls the next snapshot row into the lookahead buffer.
func (sess *session) advance() error {
	e, ok, err := sess.cur.Next()
	if err != nil {
		return err
	}
	if !ok {
		sess.lookahead = nil
		return nil
	}
	sess.lookahead = &e
	return nil
}

// reseekPast repositions the cursor at the first row after dir's group.
func (sess *session) reseekPast(dir string) error {
	if err := sess.cur.SeekPast(dir); err != nil {
		return err
	}
	return sess.advance()
}

func (sess *session) inSubtree(path string) bool {
	return path == sess.root || strings.HasPrefix(path, sess.prefix)
}

// cursorDir returns the parent path of the buffered row if it still
// belongs to this root's subtree.
func (sess *session) cursorDir() (string, bool) {
	if sess.lookahead == nil {
		return "", false
	}
	if !sess.inSubtree(sess.lookahead.ParentPath) {
		return "", false
	}
	return sess.lookahead.ParentPath, true
}

// nextDir merges the cursor stream and the pending heap into a single
// ascending sequence of directories to visit.
func (sess *session) nextDir() (string, bool, bool) {
	cursorDir, haveCursor := sess.cursorDir()
	haveHeap := sess.pending.Len() > 0

	var dir string
	var fromCursor bool
	switch {
	case !haveCursor && !haveHeap:
		return "", false, false
	case haveCursor && (!haveHeap || cursorDir <= sess.pending[0]):
		dir, fromCursor = cursorDir, true
	default:
		dir, fromCursor = sess.pending[0], false
	}

	for sess.pending.Len() > 0 && sess.pending[0] == dir {
		heap.Pop(&sess.pending)
	}
	return dir, fromCursor, true
}

func (sess *session) run() error {
	for {
		if err := sess.ctx.Err(); err != nil {
			return err
		}
		dir, fromCursor, ok := sess.nextDir()
		if !ok {
			return nil
		}
		if err := sess.visit(dir, fromCursor); err != nil {
			return err
		}
	}
}

// dirRow fetches the directory's own row: the root marker for the root,
// otherwise its entry under the parent. Nil for orphaned directories.
func (sess *session) dirRow(dir string) (*database.Entry, error) {
	if dir == sess.root {
		return sess.tx.GetEntry(sess.root, "")
	}
	return sess.tx.GetEntry(filepath.Dir(dir), filepath.Base(dir))
}

func (sess *session) visit(dir string, fromCursor bool) error {
	stat, statErr := sess.syncer.fs.StatDir(dir)
	if statErr != nil && !fswalk.IsNotFound(statErr) {
		return fmt.Errorf("stat %s: %w", dir, statErr)
	}
	notFound := statErr != nil

	row, err := sess.dirRow(dir)
	if err != nil {
		return err
	}

	// A directory whose mtime has not advanced past the stored value has
	// the same direct listing it had last run. Skip it without listing,
	// seeking the cursor past its group.
	if !notFound && row != nil && row.MtimeMS != 0 && stat.MtimeMS <= row.MtimeMS {
		sess.result.DirsSkipped++
		metrics.SyncDirsSkipped.Inc()
		if fromCursor {
			if err := sess.reseekPast(dir); err != nil {
				return err
			}
		}
		sess.syncer.emit(Event{Type: EventDirSkipped, Root: sess.root, Dir: dir})
		return nil
	}

	var listing []fswalk.ChildInfo
	if !notFound {
		listing, err = sess.syncer.fs.ReadDirSorted(dir)
		if err != nil {
			if !fswalk.IsNotFound(err) {
				return fmt.Errorf("list %s: %w", dir, err)
			}
			// Deleted between stat and list. Same as never found.
			notFound = true
			listing = nil
		} else {
			metrics.SyncListingCalls.Inc()
		}
	}

	newDirs, err := sess.diffDir(dir, fromCursor, listing)
	if err != nil {
		return err
	}

	if notFound {
		// The directory's own row goes away with its parent's diff; here
		// we only retire it from the work-set. A vanished root keeps its
		// marker but forgets its mtime so a recreated one gets rescanned.
		if err := sess.tx.DeletePending(dir); err != nil {
			return err
		}
		if dir == sess.root {
			if err := sess.tx.UpdateMtime(sess.root, "", 0); err != nil {
				return err
			}
		}
	} else {
		if len(listing) == 0 {
			// Stays in the work-set until it has child rows.
			if err := sess.tx.AddPending(dir); err != nil {
				return err
			}
		} else {
			if err := sess.tx.DeletePending(dir); err != nil {
				return err
			}
		}
		if row != nil {
			if err := sess.tx.UpdateMtime(row.ParentPath, row.Name, stat.MtimeMS); err != nil {
				return err
			}
		}
	}

	sess.result.DirsVisited++
	metrics.SyncDirsVisited.Inc()
	sess.syncer.emit(Event{Type: EventDirVisited, Root: sess.root, Dir: dir})

	// Newly discovered directories are durable before descending into
	// them. The snapshot is refreshed so their groups become visible, and
	// the cursor re-seeks past the group just finished.
	if newDirs > 0 {
		if err := sess.commit(); err != nil {
			return err
		}
		if err := sess.cur.Refresh(); err != nil {
			return err
		}
		if err := sess.reseekPast(dir); err != nil {
			return err
		}
	}
	return nil
}
