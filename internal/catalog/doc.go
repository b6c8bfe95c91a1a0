// Package catalog is the persistent store of Hash and FileRecord rows: a
// mapping from content identity (md5, sha1, sha256) to an integer hash id,
// and from a unique path to the FileRecord that references one hash id.
//
// It is backed by SQLite in write-ahead-log mode, opened the way the
// teacher repo's database package opens its own store, and retries writes
// that collide with SQLite's single-writer discipline with exponential
// backoff rather than surfacing a transient lock as a failure.
package catalog
