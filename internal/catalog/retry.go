package catalog

import (
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"filecatalog/internal/logging"
)

// RetryConfig configures the backoff applied to writes that collide with
// SQLite's single-writer discipline. Generalized from the teacher's NFS
// stale-handle retry shape to the catalog's transient-lock case.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig matches the write-retry policy suggested for an
// embedded, file-backed store under concurrent writers.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
}

func isTransientLockError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// withWriteRetry retries op while it fails with a transient SQLITE_BUSY or
// SQLITE_LOCKED error, using exponential backoff. Any other error, or
// exhaustion of the retry budget, is returned to the caller unchanged.
func withWriteRetry(cfg RetryConfig, op func() error) error {
	backoff := cfg.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isTransientLockError(lastErr) {
			return lastErr
		}
		if attempt < cfg.MaxRetries {
			logging.Debug("catalog: write locked, retrying in %v (attempt %d/%d)", backoff, attempt+1, cfg.MaxRetries)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	return &WriteTransientError{Err: lastErr}
}

// WriteTransientError surfaces once the retry budget for a transient write
// conflict has been exhausted.
type WriteTransientError struct {
	Err error
}

func (e *WriteTransientError) Error() string {
	return "catalog: write transient error after retry budget exhausted: " + e.Err.Error()
}
func (e *WriteTransientError) Unwrap() error { return e.Err }

// WriteFatalError wraps a constraint violation or schema error that is not
// retryable; the batch writer reports it per-record and continues the scan.
type WriteFatalError struct {
	Path string
	Err  error
}

func (e *WriteFatalError) Error() string {
	return "catalog: write failed for " + e.Path + ": " + e.Err.Error()
}
func (e *WriteFatalError) Unwrap() error { return e.Err }
