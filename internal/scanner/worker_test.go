package scanner

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"filecatalog/internal/config"
)

func writeZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for entryName, content := range files {
		w, err := zw.Create(entryName)
		if err != nil {
			t.Fatalf("zip Create(%s): %v", entryName, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip Write(%s): %v", entryName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
	return path
}

func TestCoordinatorDescendsIntoArchives(t *testing.T) {
	root := t.TempDir()
	archivePath := writeZip(t, root, "bundle.zip", map[string]string{
		"notes.txt":      "inside the archive",
		"sub/deeper.txt": "nested entry",
	})

	store := openTestStore(t)
	c := New(store, Options{
		Root:     root,
		Machine:  "test-host",
		Settings: config.Default(),
	})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.FilesScanned != 1 {
		t.Fatalf("expected 1 top-level file scanned, got %d", summary.FilesScanned)
	}

	vpath := virtualPath(archivePath, "notes.txt")
	rec, hash, err := store.LookupByPath(context.Background(), vpath)
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected a record for archive entry %s", vpath)
	}
	if !rec.IsArchived || rec.ArchivePath != archivePath {
		t.Errorf("expected IsArchived with ArchivePath=%s, got IsArchived=%v ArchivePath=%s", archivePath, rec.IsArchived, rec.ArchivePath)
	}
	if hash.Size != int64(len("inside the archive")) {
		t.Errorf("unexpected entry size %d", hash.Size)
	}

	nested := virtualPath(archivePath, "sub/deeper.txt")
	if _, _, err := store.LookupByPath(context.Background(), nested); err != nil {
		t.Fatalf("LookupByPath(nested): %v", err)
	}
}

func TestCoordinatorSkipsArchiveDescentWhenDisabled(t *testing.T) {
	root := t.TempDir()
	archivePath := writeZip(t, root, "bundle.zip", map[string]string{
		"notes.txt": "inside the archive",
	})

	store := openTestStore(t)
	settings := config.Default()
	settings.ScanArchives = false

	c := New(store, Options{Root: root, Machine: "test-host", Settings: settings})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	vpath := virtualPath(archivePath, "notes.txt")
	rec, _, err := store.LookupByPath(context.Background(), vpath)
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}
	if rec != nil {
		t.Error("expected no archive-entry record when scan_archives is disabled")
	}

	top, _, err := store.LookupByPath(context.Background(), archivePath)
	if err != nil {
		t.Fatalf("LookupByPath(archive): %v", err)
	}
	if top == nil {
		t.Error("expected the archive file itself to still be cataloged as a regular file")
	}
}

func TestEntryName(t *testing.T) {
	cases := map[string]string{
		"notes.txt":      "notes.txt",
		"sub/deeper.txt": "deeper.txt",
		"a/b/c.bin":      "c.bin",
	}
	for path, want := range cases {
		if got := entryName(path); got != want {
			t.Errorf("entryName(%q) = %q, want %q", path, got, want)
		}
	}
}
