package batch

import (
	"context"
	"time"

	"filecatalog/internal/catalog"
	"filecatalog/internal/logging"
)

// Config controls flush triggers and chunking. Defaults match the
// suggested production values.
type Config struct {
	BatchSize     int           // buffer size that triggers an immediate flush
	ChunkSize     int           // records per transaction within one flush
	FlushInterval time.Duration // wall-clock interval that triggers a flush
	ChannelBuffer int           // capacity of the worker-facing submission channel
}

// DefaultConfig returns the thresholds named in the catalog's interaction
// contract.
func DefaultConfig() Config {
	return Config{
		BatchSize:     500,
		ChunkSize:     200,
		FlushInterval: 5 * time.Second,
		ChannelBuffer: 2000,
	}
}

// Observer receives flush telemetry; the scan coordinator supplies an
// implementation backed by the metrics package.
type Observer interface {
	FlushDuration(seconds float64)
	BatchSize(n int)
	DBWritesAdded(n int)
	WriteErrors(n int)
}

// Writer is the single-threaded batch-flush task. Workers submit pending
// records via Submit; Writer buffers them and flushes to the catalog on
// whichever trigger fires first.
type Writer struct {
	store *catalog.Store
	cfg   Config
	obs   Observer

	in   chan catalog.PendingRecord
	done chan struct{}
}

// New creates a Writer bound to store. Call Run in its own goroutine to
// start the flush loop, and Submit from worker goroutines to hand it
// records.
func New(store *catalog.Store, cfg Config, obs Observer) *Writer {
	return &Writer{
		store: store,
		cfg:   cfg,
		obs:   obs,
		in:    make(chan catalog.PendingRecord, cfg.ChannelBuffer),
		done:  make(chan struct{}),
	}
}

// Submit hands a record to the writer, blocking if its channel is full
// (this is how the writer backpressures workers) or returning ctx's error
// if it is cancelled first.
func (w *Writer) Submit(ctx context.Context, rec catalog.PendingRecord) error {
	select {
	case w.in <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the writer's flush loop. It returns once its submission channel
// is closed (via Stop) and the resulting final flush completes.
func (w *Writer) Run() {
	defer close(w.done)

	var buffer []catalog.PendingRecord
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		w.flushChunks(buffer)
		buffer = nil
	}

	for {
		select {
		case rec, ok := <-w.in:
			if !ok {
				flush()
				return
			}
			buffer = append(buffer, rec)
			if len(buffer) >= w.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Stop closes the submission channel, signalling Run to perform a final
// flush. It blocks until that flush completes or deadline elapses; on
// timeout, Run may still be flushing in the background and any records it
// has not yet gotten to are lost — the caller's error counter should
// reflect that.
func (w *Writer) Stop(deadline time.Duration) (completed bool) {
	close(w.in)
	select {
	case <-w.done:
		return true
	case <-time.After(deadline):
		return false
	}
}

func (w *Writer) flushChunks(records []catalog.PendingRecord) {
	for start := 0; start < len(records); start += w.cfg.ChunkSize {
		end := start + w.cfg.ChunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		begin := time.Now()
		inserted, updated, failed, err := w.store.UpsertBatch(context.Background(), chunk)
		duration := time.Since(begin).Seconds()

		if w.obs != nil {
			w.obs.FlushDuration(duration)
			w.obs.BatchSize(len(chunk))
			w.obs.DBWritesAdded(inserted + updated)
			if len(failed) > 0 {
				w.obs.WriteErrors(len(failed))
			}
		}
		if err != nil {
			logging.Error("batch writer: flush of %d records failed: %v", len(chunk), err)
			if w.obs != nil {
				w.obs.WriteErrors(len(chunk))
			}
		}
	}
}
