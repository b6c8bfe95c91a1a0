// Package scanner wires the walker, decision, hashing, archive, and batch
// writer packages into the scan engine's worker pool: a single walker task
// feeds a bounded path queue, a fixed pool of workers decide/hash/submit in
// parallel, and a single batch-writer task commits to the catalog.
package scanner
