// Package syncer keeps the entry store consistent with the filesystem.
//
// A sync run walks each configured root in path order, comparing the
// stored rows for every directory against a sorted disk listing and
// applying the difference. Directories whose modification time has not
// advanced since the last run are skipped without listing them, which
// makes repeat runs over a quiet tree cheap. Stored rows are read from a
// stable snapshot while writes accumulate on a separate connection, so a
// crash mid-run leaves the store at the last commit point and the next
// run resumes from there.
package syncer
