package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan progress counters, all carrying a machine label so a catalog fed by
// several hosts can be scraped and attributed per host.
var (
	FilesScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_scanned_total",
			Help: "Total number of files visited by the walker and handed to a worker",
		},
		[]string{"machine"},
	)

	DirectoriesScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directories_scanned_total",
			Help: "Total number of directories entered by the walker",
		},
		[]string{"machine"},
	)

	ArchivesScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archives_scanned_total",
			Help: "Total number of archive files opened for descent",
		},
		[]string{"machine", "type"},
	)

	ArchiveEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_entries_total",
			Help: "Total number of entries read out of archives",
		},
		[]string{"machine", "type"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of recoverable errors encountered during a scan, by scope",
		},
		[]string{"machine", "scope"},
	)

	DBWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_writes_total",
			Help: "Total number of file records inserted or updated in the catalog",
		},
		[]string{"machine"},
	)

	BytesHashedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bytes_hashed_total",
			Help: "Total number of bytes streamed through the digest pipeline",
		},
		[]string{"machine"},
	)
)

// Point-in-time state gauges.
var (
	ScanInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scan_in_progress",
			Help: "Whether a scan is currently running on this machine (1 = running, 0 = idle)",
		},
		[]string{"machine"},
	)

	QueueFilesPending = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_files_pending",
			Help: "Number of files queued for hashing but not yet picked up by a worker",
		},
		[]string{"machine"},
	)

	WorkersRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workers_running",
			Help: "Number of hashing workers currently active",
		},
		[]string{"machine"},
	)
)

// Latency and size distributions.
var (
	ScanFileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scan_file_duration_seconds",
			Help:    "Time to stat, decide, and (if needed) hash a single file",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"machine"},
	)

	DBFlushDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_flush_duration_seconds",
			Help:    "Time to commit one batch-writer chunk to the catalog store",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"machine"},
	)

	BatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batch_size",
			Help:    "Number of records written per batch-writer flush",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500, 1000},
		},
		[]string{"machine"},
	)
)
