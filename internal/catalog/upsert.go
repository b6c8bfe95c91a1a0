package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"filecatalog/internal/logging"
)

// UpsertBatch implements the flush algorithm: resolve the chunk's distinct
// content triples to hash ids (inserting novel ones), then bulk-insert ADD
// records and bulk-update MOD records, all in one transaction. On failure
// it rolls back and retries the chunk's records one at a time; records
// that still fail are returned in failedPaths and not retried again.
func (s *Store) UpsertBatch(ctx context.Context, records []PendingRecord) (inserted, updated int, failedPaths []string, err error) {
	if len(records) == 0 {
		return 0, 0, nil, nil
	}

	inserted, updated, err = s.upsertChunk(ctx, records)
	if err == nil {
		return inserted, updated, nil, nil
	}

	logging.Warn("catalog: chunk of %d records failed (%v), retrying one at a time", len(records), err)

	var insertedTotal, updatedTotal int
	for _, rec := range records {
		i, u, recErr := s.upsertChunk(ctx, []PendingRecord{rec})
		if recErr != nil {
			logging.Warn("catalog: record for %s failed: %v", rec.Path, recErr)
			failedPaths = append(failedPaths, rec.Path)
			continue
		}
		insertedTotal += i
		updatedTotal += u
	}

	return insertedTotal, updatedTotal, failedPaths, nil
}

func (s *Store) upsertChunk(ctx context.Context, records []PendingRecord) (inserted, updated int, err error) {
	err = withWriteRetry(s.retry, func() error {
		i, u, txErr := s.runChunkTx(ctx, records)
		inserted, updated = i, u
		return txErr
	})
	return inserted, updated, err
}

type triple struct {
	md5, sha1, sha256 string
	size               int64
}

func (s *Store) runChunkTx(ctx context.Context, records []PendingRecord) (inserted, updated int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}

	ids, err := s.resolveHashIDs(ctx, tx, distinctTriples(records))
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}

	for _, rec := range records {
		hashID, ok := ids[tripleKey(rec.MD5, rec.SHA1, rec.SHA256)]
		if !ok {
			tx.Rollback()
			return 0, 0, fmt.Errorf("hash id not resolved for %s", rec.Path)
		}

		switch rec.Operation {
		case OpAdd:
			_, err = tx.ExecContext(ctx, `
				INSERT INTO file_records
					(hash_id, name, path, machine, created, modified, scanned, operation, is_archived, archive_path)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				hashID, rec.Name, rec.Path, rec.Machine,
				rec.Created.UnixNano(), rec.Modified.UnixNano(), rec.Scanned.UnixNano(),
				string(OpAdd), boolToInt(rec.IsArchived), nullableString(rec.ArchivePath))
			if err != nil {
				tx.Rollback()
				return 0, 0, &WriteFatalError{Path: rec.Path, Err: err}
			}
			inserted++

		case OpMod:
			_, err = tx.ExecContext(ctx, `
				UPDATE file_records SET
					hash_id = ?, name = ?, machine = ?, modified = ?, scanned = ?,
					operation = ?, is_archived = ?, archive_path = ?
				WHERE path = ?`,
				hashID, rec.Name, rec.Machine, rec.Modified.UnixNano(), rec.Scanned.UnixNano(),
				string(OpMod), boolToInt(rec.IsArchived), nullableString(rec.ArchivePath), rec.Path)
			if err != nil {
				tx.Rollback()
				return 0, 0, &WriteFatalError{Path: rec.Path, Err: err}
			}
			updated++

		default:
			tx.Rollback()
			return 0, 0, fmt.Errorf("pending record for %s has no operation set", rec.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

// resolveHashIDs resolves triples to hash ids in the shape spec.md §4.7
// step 2-3 calls for: one query to find which of the chunk's distinct
// triples already have ids, one bulk insert of the novel ones, then a
// second query (scoped to just the novel triples) to pick up the ids
// SQLite assigned them.
func (s *Store) resolveHashIDs(ctx context.Context, tx *sql.Tx, triples []triple) (map[string]int64, error) {
	ids := make(map[string]int64, len(triples))
	if len(triples) == 0 {
		return ids, nil
	}

	if err := s.lookupHashIDs(ctx, tx, triples, ids); err != nil {
		return nil, err
	}

	var novel []triple
	for _, t := range triples {
		if _, ok := ids[tripleKey(t.md5, t.sha1, t.sha256)]; !ok {
			novel = append(novel, t)
		}
	}
	if len(novel) == 0 {
		return ids, nil
	}

	if err := s.insertHashes(ctx, tx, novel); err != nil {
		return nil, err
	}
	if err := s.lookupHashIDs(ctx, tx, novel, ids); err != nil {
		return nil, err
	}
	for _, t := range novel {
		if _, ok := ids[tripleKey(t.md5, t.sha1, t.sha256)]; !ok {
			return nil, fmt.Errorf("hash id not found after insert for triple %s/%s/%s", t.md5, t.sha1, t.sha256)
		}
	}

	return ids, nil
}

// lookupHashIDs runs one query against hashes for every triple in the
// batch and records the ids found into ids.
func (s *Store) lookupHashIDs(ctx context.Context, tx *sql.Tx, triples []triple, ids map[string]int64) error {
	placeholders, args := tripleInClause(triples)
	query := `SELECT id, md5, sha1, sha256 FROM hashes WHERE (md5, sha1, sha256) IN (VALUES ` + placeholders + `)`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var md5, sha1, sha256 string
		if err := rows.Scan(&id, &md5, &sha1, &sha256); err != nil {
			return err
		}
		ids[tripleKey(md5, sha1, sha256)] = id
	}
	return rows.Err()
}

// insertHashes bulk-inserts every novel triple in a single statement.
func (s *Store) insertHashes(ctx context.Context, tx *sql.Tx, triples []triple) error {
	var b strings.Builder
	b.WriteString(`INSERT INTO hashes (size, md5, sha1, sha256) VALUES `)
	args := make([]any, 0, len(triples)*4)
	for i, t := range triples {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, t.size, t.md5, t.sha1, t.sha256)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}

// tripleInClause builds the "(?, ?, ?), (?, ?, ?), ..." VALUES body and
// matching args for a row-value IN query over triples.
func tripleInClause(triples []triple) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(triples)*3)
	for i, t := range triples {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?)")
		args = append(args, t.md5, t.sha1, t.sha256)
	}
	return b.String(), args
}

func distinctTriples(records []PendingRecord) []triple {
	seen := make(map[string]bool)
	var triples []triple
	for _, rec := range records {
		key := tripleKey(rec.MD5, rec.SHA1, rec.SHA256)
		if seen[key] {
			continue
		}
		seen[key] = true
		triples = append(triples, triple{md5: rec.MD5, sha1: rec.SHA1, sha256: rec.SHA256, size: rec.Size})
	}
	return triples
}

func tripleKey(md5, sha1, sha256 string) string {
	return md5 + "|" + sha1 + "|" + sha256
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
