package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"filecatalog/internal/logging"
)

const defaultTimeout = 5 * time.Second

// Store is the catalog's backing SQLite database. It is safe for
// concurrent use: reads use the driver's own connection pool, writes are
// serialized by a single mutex the way the teacher's BeginBatch does.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
	retry  RetryConfig
}

// Open opens (creating if necessary) the catalog database at dbPath and
// ensures its schema is current. dbPath's parent directory must already
// exist.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("catalog: opening %s", dbPath)

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to catalog database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath, retry: DefaultRetryConfig()}

	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}

	logging.Info("catalog: ready at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS hashes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		size INTEGER NOT NULL,
		md5 TEXT NOT NULL,
		sha1 TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		UNIQUE(md5, sha1, sha256)
	);

	CREATE TABLE IF NOT EXISTS file_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash_id INTEGER NOT NULL REFERENCES hashes(id),
		name TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		machine TEXT NOT NULL,
		created INTEGER NOT NULL,  -- unix nanoseconds; full precision so an
		modified INTEGER NOT NULL, -- unchanged mtime round-trips exactly and
		scanned INTEGER NOT NULL,  -- never spuriously compares as modified
		operation TEXT NOT NULL,
		is_archived INTEGER NOT NULL DEFAULT 0,
		archive_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_file_records_hash_id ON file_records(hash_id);
	CREATE INDEX IF NOT EXISTS idx_file_records_name ON file_records(name);
	CREATE INDEX IF NOT EXISTS idx_file_records_path ON file_records(path);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the catalog is reachable and its schema tables exist,
// satisfying the CLI's startup health check (spec.md §6 exit code 3).
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("catalog unreachable: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('hashes','file_records')`).Scan(&n); err != nil {
		return fmt.Errorf("checking catalog schema: %w", err)
	}
	if n != 2 {
		return fmt.Errorf("catalog schema incomplete: expected 2 tables, found %d", n)
	}
	return nil
}

// LookupByPath returns the FileRecord and Hash currently stored for path,
// or (nil, nil, nil) if no record exists.
func (s *Store) LookupByPath(ctx context.Context, path string) (*FileRecord, *Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT fr.id, fr.hash_id, fr.name, fr.path, fr.machine, fr.created, fr.modified,
		       fr.scanned, fr.operation, fr.is_archived, fr.archive_path,
		       h.id, h.size, h.md5, h.sha1, h.sha256
		FROM file_records fr JOIN hashes h ON h.id = fr.hash_id
		WHERE fr.path = ?`, path)

	rec, hash, err := scanRecordHashRow(row)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return rec, hash, nil
}

// LookupByPaths resolves many paths in one round trip. Nothing in the scan
// path calls it: neither the batch writer nor the workers prefetch prior
// records in bulk; workers look each path up with LookupByPath.
func (s *Store) LookupByPaths(ctx context.Context, paths []string) (map[string]struct {
	Record FileRecord
	Hash   Hash
}, error) {
	result := make(map[string]struct {
		Record FileRecord
		Hash   Hash
	}, len(paths))
	if len(paths) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	placeholders, args := inClause(paths)
	query := `
		SELECT fr.id, fr.hash_id, fr.name, fr.path, fr.machine, fr.created, fr.modified,
		       fr.scanned, fr.operation, fr.is_archived, fr.archive_path,
		       h.id, h.size, h.md5, h.sha1, h.sha256
		FROM file_records fr JOIN hashes h ON h.id = fr.hash_id
		WHERE fr.path IN (` + placeholders + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		rec, hash, err := scanRecordHashRow(rows)
		if err != nil {
			return nil, err
		}
		result[rec.Path] = struct {
			Record FileRecord
			Hash   Hash
		}{Record: *rec, Hash: *hash}
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecordHashRow(row rowScanner) (*FileRecord, *Hash, error) {
	var rec FileRecord
	var hash Hash
	var created, modified, scanned int64
	var operation string
	var isArchived int
	var archivePath sql.NullString

	err := row.Scan(
		&rec.ID, &rec.HashID, &rec.Name, &rec.Path, &rec.Machine,
		&created, &modified, &scanned, &operation, &isArchived, &archivePath,
		&hash.ID, &hash.Size, &hash.MD5, &hash.SHA1, &hash.SHA256,
	)
	if err != nil {
		return nil, nil, err
	}

	rec.Created = time.Unix(0, created).UTC()
	rec.Modified = time.Unix(0, modified).UTC()
	rec.Scanned = time.Unix(0, scanned).UTC()
	rec.Operation = Operation(operation)
	rec.IsArchived = isArchived != 0
	rec.ArchivePath = archivePath.String
	rec.HashID = hash.ID

	return &rec, &hash, nil
}

func inClause(items []string) (string, []any) {
	placeholders := ""
	args := make([]any, len(items))
	for i, item := range items {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = item
	}
	return placeholders, args
}
