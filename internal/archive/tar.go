package archive

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"strings"
)

type tarReader struct {
	file *os.File
	gzip *gzip.Reader
	tr   *tar.Reader
}

func openTar(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var body io.Reader = f
	var gz *gzip.Reader

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gz, err = gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &ReadError{Path: path, Err: err}
		}
		body = gz
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		body = bzip2.NewReader(f)
	}

	return &tarReader{file: f, gzip: gz, tr: tar.NewReader(body)}, nil
}

// Next returns the next regular-file entry, skipping directories and other
// non-regular tar entries (symlinks, devices, PAX headers).
func (t *tarReader) Next() (*Entry, error) {
	for {
		hdr, err := t.tr.Next()
		if err != nil {
			return nil, err // io.EOF or a real read error, both propagate as-is
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size == 0 {
			continue
		}

		tr := t.tr
		return &Entry{
			InternalPath: hdr.Name,
			Size:         hdr.Size,
			Modified:     hdr.ModTime,
			// tar streams sequentially: this stream is only valid until the
			// next call to Next, which is consistent with the single-active-
			// entry-at-a-time contract archive readers are used under.
			openFn: func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
		}, nil
	}
}

func (t *tarReader) Close() error {
	if t.gzip != nil {
		t.gzip.Close()
	}
	return t.file.Close()
}
