package syncer

import (
	"container/heap"
	"path/filepath"

	"filefinder/internal/database"
	"filefinder/internal/fswalk"
)

// nextStored consumes the cursor's group for dir one row at a time. Root
// marker rows are structural and never take part in a diff.
func (sess *session) nextStored(dir string, fromCursor bool) (*database.Entry, error) {
	if !fromCursor {
		return nil, nil
	}
	for sess.lookahead != nil && sess.lookahead.ParentPath == dir {
		e := *sess.lookahead
		if err := sess.advance(); err != nil {
			return nil, err
		}
		if e.Kind == database.KindRoot {
			continue
		}
		return &e, nil
	}
	return nil, nil
}

// diffDir merges the stored rows for dir against the sorted disk listing
// and applies the difference: rows only on disk are inserted, rows only in
// the store are deleted, and matching file rows have their size and mtime
// refreshed. Both inputs ascend in byte order so the merge is a single
// linear pass. Returns how many new directories were discovered.
func (sess *session) diffDir(dir string, fromCursor bool, listing []fswalk.ChildInfo) (int, error) {
	stored, err := sess.nextStored(dir, fromCursor)
	if err != nil {
		return 0, err
	}

	newDirs := 0
	i := 0
	for stored != nil || i < len(listing) {
		switch {
		case stored == nil || (i < len(listing) && listing[i].Name < stored.Name):
			// Disk only: new entry.
			child := listing[i]
			if child.IsDir {
				if err := sess.insertDir(dir, child.Name); err != nil {
					return newDirs, err
				}
				newDirs++
			} else {
				if err := sess.tx.InsertEntry(database.Entry{
					ParentPath: dir,
					Name:       child.Name,
					Kind:       database.KindFile,
					Size:       child.Size,
					MtimeMS:    child.MtimeMS,
				}); err != nil {
					return newDirs, err
				}
			}
			sess.result.Inserted++
			i++

		case i >= len(listing) || stored.Name < listing[i].Name:
			// Store only: entry is gone from disk.
			if err := sess.tx.DeleteEntry(dir, stored.Name); err != nil {
				return newDirs, err
			}
			if stored.Kind == database.KindDir {
				if err := sess.tx.DeletePending(filepath.Join(dir, stored.Name)); err != nil {
					return newDirs, err
				}
			}
			sess.result.Deleted++
			if stored, err = sess.nextStored(dir, fromCursor); err != nil {
				return newDirs, err
			}

		default:
			// Same name on both sides.
			child := listing[i]
			storedIsDir := stored.Kind == database.KindDir
			switch {
			case child.IsDir == storedIsDir && !child.IsDir:
				// File on both sides: refresh stat if it moved.
				if stored.Size != child.Size || stored.MtimeMS != child.MtimeMS {
					if err := sess.tx.UpdateFileStat(dir, child.Name, child.Size, child.MtimeMS); err != nil {
						return newDirs, err
					}
					sess.result.Updated++
				}
			case child.IsDir == storedIsDir:
				// Directory on both sides: its own visit handles it.
			case child.IsDir:
				// A file was replaced by a directory of the same name.
				if err := sess.insertDir(dir, child.Name); err != nil {
					return newDirs, err
				}
				newDirs++
				sess.result.Updated++
			default:
				// A directory was replaced by a file. The replace swaps
				// the row's kind; rows beneath the old directory are
				// orphans and fall out when their groups are visited.
				path := filepath.Join(dir, child.Name)
				if err := sess.tx.InsertEntry(database.Entry{
					ParentPath: dir,
					Name:       child.Name,
					Kind:       database.KindFile,
					Size:       child.Size,
					MtimeMS:    child.MtimeMS,
				}); err != nil {
					return newDirs, err
				}
				if err := sess.tx.DeletePending(path); err != nil {
					return newDirs, err
				}
				sess.result.Updated++
			}
			i++
			if stored, err = sess.nextStored(dir, fromCursor); err != nil {
				return newDirs, err
			}
		}
	}
	return newDirs, nil
}

// insertDir records a newly discovered directory: an entry row with no
// synchronized mtime yet, plus membership in the pending work-set, both in
// the same transaction so a crash cannot separate them.
func (sess *session) insertDir(parent, name string) error {
	path := filepath.Join(parent, name)
	if err := sess.tx.InsertEntry(database.Entry{
		ParentPath: parent,
		Name:       name,
		Kind:       database.KindDir,
	}); err != nil {
		return err
	}
	if err := sess.tx.AddPending(path); err != nil {
		return err
	}
	heap.Push(&sess.pending, path)
	return nil
}
