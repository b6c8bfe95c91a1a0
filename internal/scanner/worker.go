package scanner

import (
	"context"
	"io"
	"time"

	"filecatalog/internal/archive"
	"filecatalog/internal/batch"
	"filecatalog/internal/catalog"
	"filecatalog/internal/decide"
	"filecatalog/internal/hashstream"
	"filecatalog/internal/logging"
	"filecatalog/internal/metrics"
	"filecatalog/internal/walker"
)

// worker performs the decide -> hash/archive -> submit pipeline for every
// item the walker hands it. Each worker goroutine runs independently; the
// only shared state it touches is the catalog store (read-only lookups)
// and the batch writer's submission channel.
type worker struct {
	coordinator *Coordinator
	writer      *batch.Writer
	progress    *progress
	machine     string
	counter     *int64Counter
}

func (w *worker) run(ctx context.Context, items <-chan walker.Item) {
	for item := range items {
		if ctx.Err() != nil {
			continue
		}
		w.processFile(ctx, item)
	}
}

// processFile decides and, if warranted, hashes one regular file, then
// descends into it as an archive if its format and size qualify.
func (w *worker) processFile(ctx context.Context, item walker.Item) {
	start := time.Now()
	defer func() {
		metrics.ScanFileDuration.WithLabelValues(w.machine).Observe(time.Since(start).Seconds())
	}()

	metrics.FilesScannedTotal.WithLabelValues(w.machine).Inc()
	w.progress.incScanned()
	w.counter.add(1)

	settings := w.coordinator.opts.Settings

	prior, err := w.lookupPrior(ctx, item.Path)
	if err != nil {
		logging.Error("scanner: looking up prior record for %s: %v", item.Path, err)
		metrics.ErrorsTotal.WithLabelValues(w.machine, "worker").Inc()
		return
	}

	op := decide.Decide(item.Info.Size(), item.Info.ModTime(), prior)
	if op != decide.Skip {
		rec, err := w.hashRegularFile(ctx, item)
		if err != nil {
			logging.Error("scanner: hashing %s: %v", item.Path, err)
			metrics.ErrorsTotal.WithLabelValues(w.machine, "scan_file").Inc()
		} else {
			rec.Operation = operationFor(op)
			if err := w.writer.Submit(ctx, rec); err != nil {
				return
			}
			w.progress.incWritten(1)
		}
	}

	if !settings.ScanArchives {
		return
	}
	format, ok := archive.Detect(item.Path)
	if !ok {
		return
	}
	if settings.MaxArchiveSize > 0 && item.Info.Size() > settings.MaxArchiveSize {
		metrics.ErrorsTotal.WithLabelValues(w.machine, "archive_skip").Inc()
		return
	}
	w.processArchive(ctx, item.Path, format)
}

// lookupPrior fetches the catalog's last observation of path, translated
// into the shape decide.Decide expects.
func (w *worker) lookupPrior(ctx context.Context, path string) (*decide.Prior, error) {
	rec, hash, err := w.coordinator.store.LookupByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return &decide.Prior{Size: hash.Size, Modified: rec.Modified}, nil
}

// hashRegularFile opens path with stale-handle retry and streams it
// through the digest pipeline.
func (w *worker) hashRegularFile(ctx context.Context, item walker.Item) (catalog.PendingRecord, error) {
	f, err := openForHashing(item.Path, w.machine)
	if err != nil {
		return catalog.PendingRecord{}, err
	}
	defer f.Close()

	digest, err := hashstream.Sum(f, item.Info.Size())
	if err != nil {
		return catalog.PendingRecord{}, err
	}
	metrics.BytesHashedTotal.WithLabelValues(w.machine).Add(float64(digest.Size))

	now := time.Now().UTC()
	return catalog.PendingRecord{
		Name:     item.Info.Name(),
		Path:     item.Path,
		Machine:  w.machine,
		Modified: item.Info.ModTime().UTC(),
		Scanned:  now,
		Size:     digest.Size,
		MD5:      digest.MD5,
		SHA1:     digest.SHA1,
		SHA256:   digest.SHA256,
	}, nil
}

// processArchive opens archivePath under format and descends into every
// entry, applying the same decide/hash/submit pipeline with virtual paths.
func (w *worker) processArchive(ctx context.Context, archivePath string, format archive.Format) {
	reader, err := archive.Open(archivePath, format)
	if err != nil {
		if _, unsupported := err.(*archive.UnsupportedError); unsupported {
			metrics.ErrorsTotal.WithLabelValues(w.machine, "archive_skip").Inc()
			return
		}
		logging.Error("scanner: opening archive %s: %v", archivePath, err)
		metrics.ErrorsTotal.WithLabelValues(w.machine, "archive_read").Inc()
		return
	}
	defer reader.Close()

	metrics.ArchivesScannedTotal.WithLabelValues(w.machine, string(format)).Inc()
	settings := w.coordinator.opts.Settings

	for {
		if ctx.Err() != nil {
			return
		}
		entry, err := reader.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			logging.Error("scanner: reading entries of %s: %v", archivePath, err)
			metrics.ErrorsTotal.WithLabelValues(w.machine, "archive_read").Inc()
			return
		}

		if settings.MaxArchiveFileSize > 0 && entry.Size > settings.MaxArchiveFileSize {
			metrics.ErrorsTotal.WithLabelValues(w.machine, "archive_skip").Inc()
			continue
		}

		vpath := virtualPath(archivePath, entry.InternalPath)
		w.processArchiveEntry(ctx, archivePath, vpath, entry, format)
	}
}

func (w *worker) processArchiveEntry(ctx context.Context, archivePath, vpath string, entry *archive.Entry, format archive.Format) {
	prior, err := w.lookupPrior(ctx, vpath)
	if err != nil {
		logging.Error("scanner: looking up prior record for %s: %v", vpath, err)
		metrics.ErrorsTotal.WithLabelValues(w.machine, "worker").Inc()
		return
	}

	op := decide.Decide(entry.Size, entry.Modified, prior)
	if op == decide.Skip {
		return
	}

	stream, err := entry.OpenStream()
	if err != nil {
		logging.Error("scanner: opening entry %s: %v", vpath, err)
		metrics.ErrorsTotal.WithLabelValues(w.machine, "archive_read").Inc()
		return
	}
	defer stream.Close()

	digest, err := hashstream.Sum(stream, entry.Size)
	if err != nil {
		logging.Error("scanner: hashing entry %s: %v", vpath, err)
		metrics.ErrorsTotal.WithLabelValues(w.machine, "archive_read").Inc()
		return
	}
	metrics.BytesHashedTotal.WithLabelValues(w.machine).Add(float64(digest.Size))
	metrics.ArchiveEntriesTotal.WithLabelValues(w.machine, string(format)).Inc()

	now := time.Now().UTC()
	rec := catalog.PendingRecord{
		Name:        entryName(entry.InternalPath),
		Path:        vpath,
		Machine:     w.machine,
		Modified:    entry.Modified.UTC(),
		Scanned:     now,
		Operation:   operationFor(op),
		IsArchived:  true,
		ArchivePath: archivePath,
		Size:        digest.Size,
		MD5:         digest.MD5,
		SHA1:        digest.SHA1,
		SHA256:      digest.SHA256,
	}

	if err := w.writer.Submit(ctx, rec); err != nil {
		return
	}
	w.progress.incWritten(1)
}

func operationFor(op decide.Operation) catalog.Operation {
	if op == decide.Mod {
		return catalog.OpMod
	}
	return catalog.OpAdd
}

// entryName returns the final path component of an archive's internal
// path, independent of which separator the format used.
func entryName(internalPath string) string {
	for i := len(internalPath) - 1; i >= 0; i-- {
		if internalPath[i] == '/' || internalPath[i] == '\\' {
			return internalPath[i+1:]
		}
	}
	return internalPath
}
