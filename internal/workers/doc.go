/*
Package workers provides utilities for determining optimal worker pool sizes
in containerized environments.

# Overview

When running Go applications in containers (Docker, Kubernetes, etc.), the
number of available CPUs may be limited by cgroup constraints. While Go 1.19+
automatically sets GOMAXPROCS based on container CPU limits, the commonly used
runtime.NumCPU() function still returns the host machine's CPU count.

This package provides a helper that uses GOMAXPROCS to size the scan
coordinator's worker pool, ensuring the scan engine respects container
resource limits rather than over-spawning on a large shared host.

# Basic Usage

	import "filecatalog/internal/workers"

	// The scan coordinator's hashing pool is CPU-bound (hashing, archive
	// decompression): one worker per available CPU, capped at 8.
	numWorkers := workers.ForCPU(8)

For fine-grained control, Count takes an explicit multiplier and cap:

	// 3 workers per CPU, maximum of 24
	numWorkers := workers.Count(3.0, 24)

# Environment Variable Override

Count respects the INDEXER_WORKERS environment variable, allowing operators
to pin a worker count regardless of detected CPU count, useful when a scan
is sharing a host with other jobs.

# Why CPU-bound for the scan pool

Each scan worker spends its time computing MD5/SHA1/SHA256 over file bytes
and, for archive entries, running the format's decompressor first. Both are
CPU-bound; adding workers beyond GOMAXPROCS just adds context-switching
overhead without increasing hash throughput, so the coordinator sizes its
pool with ForCPU rather than scaling workers past the CPU count.

# Go Version Requirements

This package relies on Go 1.19+ behavior where GOMAXPROCS is automatically
set based on container CPU limits. On earlier Go versions, GOMAXPROCS defaults
to runtime.NumCPU(), and the container-awareness benefits are lost.
*/
package workers
