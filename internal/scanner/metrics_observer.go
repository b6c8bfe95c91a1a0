package scanner

import "filecatalog/internal/metrics"

// metricsObserver bridges the batch writer's generic Observer callbacks to
// this machine's labeled Prometheus series.
type metricsObserver struct {
	machine string
}

func (o metricsObserver) FlushDuration(seconds float64) {
	metrics.DBFlushDuration.WithLabelValues(o.machine).Observe(seconds)
}

func (o metricsObserver) BatchSize(n int) {
	metrics.BatchSize.WithLabelValues(o.machine).Observe(float64(n))
}

func (o metricsObserver) DBWritesAdded(n int) {
	metrics.DBWritesTotal.WithLabelValues(o.machine).Add(float64(n))
}

func (o metricsObserver) WriteErrors(n int) {
	metrics.ErrorsTotal.WithLabelValues(o.machine, "db_flush").Add(float64(n))
}

// walkObserver bridges the walker's DirectoryEntered/TraversalError
// callbacks to this machine's labeled Prometheus series.
type walkObserver struct {
	machine string
}

func (o walkObserver) DirectoryEntered(string) {
	metrics.DirectoriesScannedTotal.WithLabelValues(o.machine).Inc()
}

func (o walkObserver) TraversalError(path string, err error) {
	metrics.ErrorsTotal.WithLabelValues(o.machine, "dir_iter").Inc()
}
