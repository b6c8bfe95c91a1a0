package archive

import (
	"archive/zip"
	"io"
)

type zipReader struct {
	rc    *zip.ReadCloser
	files []*zip.File
	pos   int
}

func openZip(path string) (Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return &zipReader{rc: rc, files: rc.File}, nil
}

// Next returns the next non-directory, non-empty entry. It skips
// directories and zero-byte metadata entries transparently.
func (z *zipReader) Next() (*Entry, error) {
	for z.pos < len(z.files) {
		f := z.files[z.pos]
		z.pos++

		if f.FileInfo().IsDir() {
			continue
		}
		if f.UncompressedSize64 == 0 {
			continue
		}

		file := f
		return &Entry{
			InternalPath: f.Name,
			Size:         int64(f.UncompressedSize64),
			Modified:     f.Modified,
			openFn:       func() (io.ReadCloser, error) { return file.Open() },
		}, nil
	}
	return nil, io.EOF
}

func (z *zipReader) Close() error {
	return z.rc.Close()
}
