// Package archive enumerates the entries of ZIP, TAR (and its compressed
// variants), and RAR containers as a lazy sequence of read-once streams.
//
// ZIP and TAR are read with the standard library; RAR is read by shelling
// out to an external 7z binary, since no third-party or standard-library
// RAR reader exists. An unrar binary is also located on PATH, but it is
// driven with 7z's command syntax, so reading through it fails with a
// ReadError. When neither tool is on PATH, opening a RAR archive fails with
// UnsupportedError rather than a ReadError, so the coordinator can record
// a skip instead of a failure.
package archive
