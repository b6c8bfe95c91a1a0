package hashstream

import (
	"crypto/md5"  //nolint:gosec // content identity, not a security digest
	"crypto/sha1" //nolint:gosec // content identity, not a security digest
	"crypto/sha256"
	"fmt"
	"io"
)

// bufferSize is the read buffer used while streaming through the hash
// functions. It is an implementation detail, not observable to callers.
const bufferSize = 256 * 1024

// Digest is the content identity produced by a single pass over a byte
// stream: its size and three lowercase hex digests.
type Digest struct {
	Size   int64
	MD5    string
	SHA1   string
	SHA256 string
}

// ReadError wraps an I/O failure that occurred mid-stream.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("hashstream: read error: %v", e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// SizeMismatchError reports that the caller's expected size did not match
// the number of bytes actually observed on the stream.
type SizeMismatchError struct {
	Expected int64
	Observed int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("hashstream: size mismatch: expected %d, observed %d", e.Expected, e.Observed)
}

// Sum reads r to completion and returns its size and digests. If
// expectedSize is non-negative, it is compared against the observed size
// and a *SizeMismatchError is returned on disagreement. Sum never retries.
func Sum(r io.Reader, expectedSize int64) (Digest, error) {
	md5h := md5.New()   //nolint:gosec
	sha1h := sha1.New() //nolint:gosec
	sha256h := sha256.New()

	mw := io.MultiWriter(md5h, sha1h, sha256h)

	buf := make([]byte, bufferSize)
	n, err := io.CopyBuffer(mw, r, buf)
	if err != nil {
		return Digest{}, &ReadError{Err: err}
	}

	if expectedSize >= 0 && n != expectedSize {
		return Digest{}, &SizeMismatchError{Expected: expectedSize, Observed: n}
	}

	return Digest{
		Size:   n,
		MD5:    fmt.Sprintf("%x", md5h.Sum(nil)),
		SHA1:   fmt.Sprintf("%x", sha1h.Sum(nil)),
		SHA256: fmt.Sprintf("%x", sha256h.Sum(nil)),
	}, nil
}
