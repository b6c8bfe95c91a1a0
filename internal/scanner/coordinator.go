package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filecatalog/internal/batch"
	"filecatalog/internal/catalog"
	"filecatalog/internal/config"
	"filecatalog/internal/filesystem"
	"filecatalog/internal/ignorerules"
	"filecatalog/internal/logging"
	"filecatalog/internal/metrics"
	"filecatalog/internal/walker"
	"filecatalog/internal/workers"
)

// flushOnShutdownDeadline bounds how long the coordinator waits for the
// batch writer's final flush once shutdown begins.
const flushOnShutdownDeadline = 30 * time.Second

// Options configures one scan run.
type Options struct {
	Root     string
	Machine  string
	Ignore   *ignorerules.Matcher
	Settings config.Settings
}

// Summary reports the outcome of a completed or interrupted scan.
type Summary struct {
	FilesScanned int64
	Interrupted  bool
}

// Coordinator owns one scan's lifecycle over an already-open catalog store:
// starting the walker, worker pool, and batch writer, and tearing all three
// down cleanly on completion or interrupt.
type Coordinator struct {
	store *catalog.Store
	opts  Options
}

// New builds a Coordinator bound to an already-open catalog store.
func New(store *catalog.Store, opts Options) *Coordinator {
	if opts.Ignore == nil {
		opts.Ignore = ignorerules.Disabled
	}
	return &Coordinator{store: store, opts: opts}
}

// Run walks opts.Root, decides and hashes every candidate file, and batches
// the results into the catalog. It returns when the walk is exhausted, the
// batch writer's final flush completes, or ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) (Summary, error) {
	machine := c.opts.Machine
	metrics.ScanInProgress.WithLabelValues(machine).Set(1)
	defer metrics.ScanInProgress.WithLabelValues(machine).Set(0)

	writer := batch.New(c.store, batch.DefaultConfig(), metricsObserver{machine: machine})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writer.Run()
	}()

	prog := newProgress()
	go prog.run()
	defer prog.stop()

	items := make(chan walker.Item, 10_000)
	walkErrCh := make(chan error, 1)
	go func() {
		walkErrCh <- walker.Walk(ctx, c.opts.Root, c.opts.Ignore, walkObserver{machine: machine}, items)
		close(items)
	}()

	numWorkers := workers.ForCPU(8)
	metrics.WorkersRunning.WithLabelValues(machine).Set(float64(numWorkers))
	defer metrics.WorkersRunning.WithLabelValues(machine).Set(0)

	stopMonitor := make(chan struct{})
	queueMonitorDone := make(chan struct{})
	go monitorQueueDepth(items, machine, stopMonitor, queueMonitorDone)

	var filesScanned int64Counter
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := &worker{
				coordinator: c,
				writer:      writer,
				progress:    prog,
				machine:     machine,
				counter:     &filesScanned,
			}
			w.run(ctx, items)
		}()
	}

	wg.Wait()
	close(stopMonitor)
	<-queueMonitorDone

	walkErr := <-walkErrCh
	if walkErr != nil {
		logging.Warn("scanner: walk returned error: %v", walkErr)
	}

	interrupted := ctx.Err() != nil
	if interrupted {
		config.LogShutdownInitiated("cancellation")
	}

	completed := writer.Stop(flushOnShutdownDeadline)
	if completed {
		<-writerDone
	} else {
		logging.Warn("scanner: batch writer did not flush within %v, records may have been dropped", flushOnShutdownDeadline)
		metrics.ErrorsTotal.WithLabelValues(machine, "db_flush").Inc()
	}

	return Summary{
		FilesScanned: filesScanned.load(),
		Interrupted:  interrupted,
	}, nil
}

// int64Counter is a tiny mutex-guarded counter shared by the workers of one
// scan run.
type int64Counter struct {
	mu sync.Mutex
	n  int64
}

func (c *int64Counter) add(n int64) {
	c.mu.Lock()
	c.n += n
	c.mu.Unlock()
}

func (c *int64Counter) load() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// monitorQueueDepth samples the path queue's buffered length into the
// queue_files_pending gauge until stop is closed, then zeroes it and
// closes done.
func monitorQueueDepth(items chan walker.Item, machine string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer metrics.QueueFilesPending.WithLabelValues(machine).Set(0)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.QueueFilesPending.WithLabelValues(machine).Set(float64(len(items)))
		case <-stop:
			return
		}
	}
}

// openForHashing opens path for reading, retrying transient NFS stale
// handle errors.
func openForHashing(path, machine string) (*os.File, error) {
	return filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig(), machine)
}

// virtualPath builds the archive-entry path per the `archive::entry`
// namespace, normalizing the internal path to forward slashes.
func virtualPath(archivePath, internalPath string) string {
	return fmt.Sprintf("%s::%s", archivePath, filepath.ToSlash(internalPath))
}
