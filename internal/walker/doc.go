// Package walker produces a deterministic, lazy sequence of candidate file
// paths from a root directory, consulting an ignore matcher before
// descending into a directory or yielding a file.
package walker
