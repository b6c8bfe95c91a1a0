package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePending(path string, op Operation) PendingRecord {
	// Sub-second component kept deliberately nonzero: round-tripping it
	// exactly through the store is what keeps an unchanged file's mtime
	// comparing equal on rescan instead of misclassifying it as modified.
	now := time.Date(2024, 3, 15, 9, 30, 0, 123456789, time.UTC)
	return PendingRecord{
		Name:      filepath.Base(path),
		Path:      path,
		Machine:   "test-host",
		Created:   now,
		Modified:  now,
		Scanned:   now,
		Operation: op,
		Size:      1024,
		MD5:       "d41d8cd98f00b204e9800998ecf8427e",
		SHA1:      "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		SHA256:    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	}
}

func TestUpsertBatchAddThenLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := samplePending("/data/a.bin", OpAdd)
	inserted, updated, failed, err := s.UpsertBatch(ctx, []PendingRecord{rec})
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if inserted != 1 || updated != 0 || len(failed) != 0 {
		t.Fatalf("got inserted=%d updated=%d failed=%v", inserted, updated, failed)
	}

	got, hash, err := s.LookupByPath(ctx, rec.Path)
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}
	if got == nil {
		t.Fatal("expected a FileRecord, got none")
	}
	if hash.MD5 != rec.MD5 {
		t.Errorf("hash mismatch: got %s want %s", hash.MD5, rec.MD5)
	}
}

func TestUpsertBatchDedupesHashAcrossPaths(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := samplePending("/data/a.bin", OpAdd)
	b := samplePending("/data/b.bin", OpAdd)
	// a and b share content, so only one Hash row should ever be created.

	if _, _, _, err := s.UpsertBatch(ctx, []PendingRecord{a, b}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	groups, err := s.Duplicates(ctx)
	if err != nil {
		t.Fatalf("Duplicates: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected exactly one duplicate group, got %d", len(groups))
	}
	if len(groups[0].Records) != 2 {
		t.Fatalf("expected 2 records in the duplicate group, got %d", len(groups[0].Records))
	}
}

func TestUpsertBatchMod(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	add := samplePending("/data/c.bin", OpAdd)
	if _, _, _, err := s.UpsertBatch(ctx, []PendingRecord{add}); err != nil {
		t.Fatalf("UpsertBatch add: %v", err)
	}

	mod := samplePending("/data/c.bin", OpMod)
	mod.MD5 = "5d41402abc4b2a76b9719d911017c592"
	mod.SHA1 = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"
	mod.SHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	mod.Size = 5

	_, updated, _, err := s.UpsertBatch(ctx, []PendingRecord{mod})
	if err != nil {
		t.Fatalf("UpsertBatch mod: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 updated record, got %d", updated)
	}

	got, hash, err := s.LookupByPath(ctx, "/data/c.bin")
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}
	if got.Operation != OpMod {
		t.Errorf("expected operation MOD, got %s", got.Operation)
	}
	if hash.MD5 != mod.MD5 {
		t.Errorf("expected updated hash, got %s", hash.MD5)
	}
}

func TestLookupByPathPreservesSubSecondModified(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := samplePending("/data/sub-second.bin", OpAdd)
	if _, _, _, err := s.UpsertBatch(ctx, []PendingRecord{rec}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	got, _, err := s.LookupByPath(ctx, rec.Path)
	if err != nil {
		t.Fatalf("LookupByPath: %v", err)
	}
	if !got.Modified.Equal(rec.Modified) {
		t.Errorf("Modified round-trip lost precision: got %v, want %v", got.Modified, rec.Modified)
	}
}

func TestLookupByPathMissing(t *testing.T) {
	s := openTestStore(t)
	rec, hash, err := s.LookupByPath(context.Background(), "/nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil || hash != nil {
		t.Errorf("expected nil, nil for a missing path, got %v %v", rec, hash)
	}
}
