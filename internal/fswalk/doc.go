// Package fswalk provides the filesystem access used by the synchronizer:
// directory stat and byte-order-sorted directory listings, with the error
// classification the traversal driver relies on.
//
// Errors fall into two classes. A path that no longer exists is reported
// via fs.ErrNotExist (check with [IsNotFound]) and is recovered locally by
// the caller as a structural deletion. Every other error (permission
// denied, path too long, host unreachable) is an access error and
// propagates; the synchronizer aborts the current root on it rather than
// retrying. An individual child entry whose metadata cannot be read, or
// whose timestamp is outside the representable range, is skipped with a
// warning and listing continues.
package fswalk
