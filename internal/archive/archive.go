package archive

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Format identifies a container format handled by this package.
type Format string

const (
	FormatZip Format = "zip"
	FormatTar Format = "tar"
	FormatRar Format = "rar"
)

// UnsupportedError is returned by Open when the archive's format cannot be
// read in this environment (missing external tool, unrecognized variant).
// The coordinator treats this as a skip, not an error.
type UnsupportedError struct {
	Format Format
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("archive: %s unsupported: %s", e.Format, e.Reason)
}

// ReadError wraps a failure opening an archive or enumerating its entries.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("archive: reading %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

var errAlreadyOpened = errors.New("archive: entry stream already opened")

// Entry describes one file inside a container. Directories and zero-byte
// metadata entries are never surfaced by a Reader's Next.
type Entry struct {
	InternalPath string
	Size         int64
	Modified     time.Time

	opened bool
	openFn func() (io.ReadCloser, error)
}

// OpenStream returns a read-only stream over the entry's content. It may be
// called at most once per entry.
func (e *Entry) OpenStream() (io.ReadCloser, error) {
	if e.opened {
		return nil, errAlreadyOpened
	}
	e.opened = true
	return e.openFn()
}

// Reader enumerates the entries of one open archive in the underlying
// format's natural order. Next returns io.EOF once exhausted.
type Reader interface {
	Next() (*Entry, error)
	Close() error
}

// Open opens path as an archive of the given format. The caller is
// responsible for calling Close on the returned Reader.
func Open(path string, format Format) (Reader, error) {
	switch format {
	case FormatZip:
		return openZip(path)
	case FormatTar:
		return openTar(path)
	case FormatRar:
		return openRar(path)
	default:
		return nil, &UnsupportedError{Format: format, Reason: "unknown format"}
	}
}
