package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filecatalog/internal/catalog"
	"filecatalog/internal/config"
)

func openTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	s, err := catalog.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCoordinatorAddsNewFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")
	writeFile(t, root, "b.txt", "world")

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
	if summary.FilesScanned != 2 {
		t.Fatalf("expected 2 files scanned, got %d", summary.FilesScanned)
	}
	if summary.Interrupted {
		t.Fatal("expected a clean, non-interrupted run")
	}

	rec, hash, err := store.LookupByPath(context.Background(), filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a catalog record for a.txt")
	}
	if rec.Operation != catalog.OpAdd {
		t.Errorf("expected operation ADD, got %s", rec.Operation)
	}
	if hash.Size != 5 {
		t.Errorf("expected size 5, got %d", hash.Size)
	}
}

func TestCoordinatorSkipsUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.txt", "hello")

	store := openTestStore(t)
	opts := Options{Root: root, Machine: "test-host", Settings: config.Default()}

	if _, err := New(store, opts).Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first, _, err := store.LookupByPath(context.Background(), path)
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}

	if _, err := New(store, opts).Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second, _, err := store.LookupByPath(context.Background(), path)
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}

	if second.Scanned.Before(first.Scanned) {
		t.Errorf("expected the second scan's Scanned timestamp to be >= the first's")
	}
	if second.ID != first.ID {
		t.Errorf("unchanged file should not have produced a new record, got ids %d and %d", first.ID, second.ID)
	}
}

func TestCoordinatorDetectsModification(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.txt", "hello")

	store := openTestStore(t)
	opts := Options{Root: root, Machine: "test-host", Settings: config.Default()}
	if _, err := New(store, opts).Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// Force a distinct mtime so decide.Decide sees a change even on
	// filesystems with coarse timestamp resolution.
	future := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("hello, world"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if _, err := New(store, opts).Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	rec, hash, err := store.LookupByPath(context.Background(), path)
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}
	if rec.Operation != catalog.OpMod {
		t.Errorf("expected operation MOD, got %s", rec.Operation)
	}
	if hash.Size != int64(len("hello, world")) {
		t.Errorf("expected updated size, got %d", hash.Size)
	}
}

func TestCoordinatorRespectsCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")

	store := openTestStore(t)
	c := New(store, Options{Root: root, Machine: "test-host", Settings: config.Default()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Interrupted {
		t.Error("expected Interrupted to be true for a pre-cancelled context")
	}
}
