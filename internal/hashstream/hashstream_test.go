package hashstream

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSumEmptyInput(t *testing.T) {
	d, err := Sum(strings.NewReader(""), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Size != 0 {
		t.Errorf("expected size 0, got %d", d.Size)
	}
	if d.MD5 != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("unexpected md5 for empty input: %s", d.MD5)
	}
	if d.SHA1 != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Errorf("unexpected sha1 for empty input: %s", d.SHA1)
	}
	if d.SHA256 != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected sha256 for empty input: %s", d.SHA256)
	}
}

func TestSumKnownContent(t *testing.T) {
	d, err := Sum(strings.NewReader("hello"), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.MD5 != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("unexpected md5: %s", d.MD5)
	}
}

func TestSumSizeMismatch(t *testing.T) {
	_, err := Sum(strings.NewReader("hello"), 10)
	var mismatch *SizeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *SizeMismatchError, got %v", err)
	}
	if mismatch.Expected != 10 || mismatch.Observed != 5 {
		t.Errorf("unexpected mismatch values: %+v", mismatch)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestSumReadError(t *testing.T) {
	_, err := Sum(failingReader{}, -1)
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
}
