// Package filesystem wraps raw stat/open calls with retry logic for the
// transient stale-file-handle errors common on network-mounted volumes.
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"filecatalog/internal/logging"
	"filecatalog/internal/metrics"
)

// RetryConfig configures retry behavior for filesystem operations.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS stale-handle retry.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isStaleHandleError reports whether err is an NFS stale file handle error
// (ESTALE), the one filesystem error worth retrying: the path was valid but
// the server-side handle backing it expired mid-walk.
func isStaleHandleError(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}
	return false
}

// StatWithRetry performs os.Stat, retrying on ESTALE with exponential
// backoff. machine labels the errors_total counter on exhaustion.
func StatWithRetry(path string, cfg RetryConfig, machine string) (os.FileInfo, error) {
	return retryLoop(cfg, machine, "stat", func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// OpenWithRetry performs os.Open, retrying on ESTALE with exponential
// backoff. machine labels the errors_total counter on exhaustion.
func OpenWithRetry(path string, cfg RetryConfig, machine string) (*os.File, error) {
	return retryLoop(cfg, machine, "open", func() (*os.File, error) {
		return os.Open(path)
	})
}

func retryLoop[T any](cfg RetryConfig, machine, op string, attempt func() (T, error)) (T, error) {
	var lastErr error
	backoff := cfg.InitialBackoff

	for try := 0; try <= cfg.MaxRetries; try++ {
		result, err := attempt()
		if err == nil {
			if try > 0 {
				logging.Info("filesystem %s succeeded on retry %d", op, try)
			}
			return result, nil
		}

		lastErr = err
		if !isStaleHandleError(err) {
			return result, err
		}

		if try < cfg.MaxRetries {
			logging.Debug("filesystem %s stale handle, retrying in %v (attempt %d/%d)", op, backoff, try+1, cfg.MaxRetries)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	logging.Warn("filesystem %s failed after %d retries: %v", op, cfg.MaxRetries, lastErr)
	metrics.ErrorsTotal.WithLabelValues(machine, "scan_file").Inc()
	var zero T
	return zero, lastErr
}
