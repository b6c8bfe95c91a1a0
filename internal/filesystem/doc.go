/*
Package filesystem provides resilient filesystem operations with automatic
retry logic for NFS stale file handle errors.

# Purpose

This package wraps standard filesystem operations (os.Stat, os.Open) with
retry logic for transient ESTALE errors that occur when the scan engine
walks a network-mounted volume during a server-side change.

# Usage

	import "filecatalog/internal/filesystem"

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig(), machine)
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig(), machine)

# Retry behavior

Exponential backoff with defaults MaxRetries=3, InitialBackoff=50ms,
MaxBackoff=500ms. Only ESTALE triggers a retry; every other error returns
immediately. Exhausting retries increments errors_total{scope=scan_file}.
*/
package filesystem
