// Package batch buffers pending catalog records from many workers and
// flushes them to the catalog store in bounded chunks, isolating a failing
// chunk to per-record retries rather than losing the whole flush.
package batch
