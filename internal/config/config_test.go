package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if s != want {
		t.Errorf("got %+v, want defaults %+v", s, want)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
scan_archives = false
max_archive_size = 1000
max_archive_file_size = 500
enable_ignore_rules = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ScanArchives {
		t.Error("expected scan_archives=false from file")
	}
	if s.MaxArchiveSize != 1000 {
		t.Errorf("MaxArchiveSize = %d, want 1000", s.MaxArchiveSize)
	}
	if s.MaxArchiveFileSize != 500 {
		t.Errorf("MaxArchiveFileSize = %d, want 500", s.MaxArchiveFileSize)
	}
	if !s.EnableIgnoreRules {
		t.Error("expected enable_ignore_rules=true from file")
	}
}

func TestEnvOverridesFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("scan_archives = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INDEXER_SCAN_ARCHIVES", "false")
	t.Setenv("INDEXER_MAX_ARCHIVE_SIZE", "42")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ScanArchives {
		t.Error("expected env override to disable scan_archives")
	}
	if s.MaxArchiveSize != 42 {
		t.Errorf("MaxArchiveSize = %d, want 42 from env", s.MaxArchiveSize)
	}
}

func TestInvalidEnvBoolIgnored(t *testing.T) {
	t.Setenv("INDEXER_SCAN_ARCHIVES", "not-a-bool")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.ScanArchives {
		t.Error("expected default to survive an invalid override")
	}
}
