// Package metrics provides Prometheus instrumentation for the scan engine.
//
// Every series carries a machine label, so a catalog fed by scans from
// several hosts can be scraped and attributed per host.
//
// # Counters
//
//   - FilesScannedTotal, DirectoriesScannedTotal: walker throughput
//   - ArchivesScannedTotal, ArchiveEntriesTotal: archive descent, by type
//   - ErrorsTotal: recoverable errors, by scope
//   - DBWritesTotal: file records inserted or updated
//   - BytesHashedTotal: bytes streamed through the digest pipeline
//
// # Gauges
//
//   - ScanInProgress: 1 while a scan is running, 0 otherwise
//   - QueueFilesPending: files queued but not yet picked up by a worker
//   - WorkersRunning: active hashing workers
//
// # Histograms
//
//   - ScanFileDuration: per-file stat/decide/hash latency
//   - DBFlushDuration: per-chunk batch-writer commit latency
//   - BatchSize: records written per flush
//
// # Usage
//
// Call [InitializeMetrics] once at startup, after the machine identity is
// known, so every series is present from the first scrape:
//
//	metrics.InitializeMetrics(machineName)
//
// Mount the scrape endpoint with promhttp:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
package metrics
