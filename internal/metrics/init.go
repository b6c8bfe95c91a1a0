package metrics

// InitializeMetrics pre-populates every expected label combination for the
// given machine so each series is exported from the first Prometheus
// scrape rather than appearing only once a label value is first observed.
// Call this once at startup after the machine identity is known.
func InitializeMetrics(machine string) {
	FilesScannedTotal.WithLabelValues(machine)
	DirectoriesScannedTotal.WithLabelValues(machine)
	DBWritesTotal.WithLabelValues(machine)
	BytesHashedTotal.WithLabelValues(machine)

	ScanInProgress.WithLabelValues(machine).Set(0)
	QueueFilesPending.WithLabelValues(machine).Set(0)
	WorkersRunning.WithLabelValues(machine).Set(0)

	ScanFileDuration.WithLabelValues(machine)
	DBFlushDuration.WithLabelValues(machine)
	BatchSize.WithLabelValues(machine)

	for _, archiveType := range []string{"zip", "tar", "rar"} {
		ArchivesScannedTotal.WithLabelValues(machine, archiveType)
		ArchiveEntriesTotal.WithLabelValues(machine, archiveType)
	}

	for _, scope := range []string{"scan_file", "scan_archive", "worker", "dir_iter", "db_flush", "archive_read", "archive_skip"} {
		ErrorsTotal.WithLabelValues(machine, scope)
	}
}
