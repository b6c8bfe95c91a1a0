package catalog

import (
	"context"
	"database/sql"
	"time"
)

// Statistics returns a point-in-time snapshot of catalog-wide counts. It is
// consumed by the external read API, never by the scan path itself.
func (s *Store) Statistics(ctx context.Context) (Statistics, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats Statistics
	var lastScanned sql.NullInt64

	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM file_records),
			(SELECT COUNT(*) FROM hashes),
			(SELECT COALESCE(SUM(h.size), 0) FROM file_records fr JOIN hashes h ON h.id = fr.hash_id),
			(SELECT COUNT(*) FROM file_records fr
				WHERE (SELECT COUNT(*) FROM file_records fr2 WHERE fr2.hash_id = fr.hash_id) > 1),
			(SELECT MAX(scanned) FROM file_records)
	`)
	if err := row.Scan(&stats.TotalFiles, &stats.TotalHashes, &stats.TotalBytes, &stats.DuplicateFiles, &lastScanned); err != nil {
		return Statistics{}, err
	}
	if lastScanned.Valid {
		stats.LastScanned = time.Unix(0, lastScanned.Int64).UTC()
	}
	return stats, nil
}

// Search returns FileRecords whose name or path contains query, paired with
// the Hash each references.
func (s *Store) Search(ctx context.Context, query string, limit, offset int) ([]SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT fr.id, fr.hash_id, fr.name, fr.path, fr.machine, fr.created, fr.modified,
		       fr.scanned, fr.operation, fr.is_archived, fr.archive_path,
		       h.id, h.size, h.md5, h.sha1, h.sha256
		FROM file_records fr JOIN hashes h ON h.id = fr.hash_id
		WHERE fr.name LIKE ? OR fr.path LIKE ?
		ORDER BY fr.path
		LIMIT ? OFFSET ?`, like, like, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		rec, hash, err := scanRecordHashRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Record: *rec, Hash: *hash})
	}
	return results, rows.Err()
}

// Tree groups every FileRecord under prefix into a single flat TreeNode
// listing; it is a snapshot read for the external read layer, not a
// directory walk of the live filesystem.
func (s *Store) Tree(ctx context.Context, prefix string) (TreeNode, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT fr.id, fr.hash_id, fr.name, fr.path, fr.machine, fr.created, fr.modified,
		       fr.scanned, fr.operation, fr.is_archived, fr.archive_path,
		       h.id, h.size, h.md5, h.sha1, h.sha256
		FROM file_records fr JOIN hashes h ON h.id = fr.hash_id
		WHERE fr.path LIKE ?
		ORDER BY fr.path`, prefix+"%")
	if err != nil {
		return TreeNode{}, err
	}
	defer rows.Close()

	root := TreeNode{Path: prefix, IsDir: true}
	for rows.Next() {
		rec, _, err := scanRecordHashRow(rows)
		if err != nil {
			return TreeNode{}, err
		}
		root.Children = append(root.Children, TreeNode{Path: rec.Path, IsDir: false, Record: rec})
	}
	return root, rows.Err()
}

// Duplicates returns every Hash referenced by more than one FileRecord,
// along with the records that reference it.
func (s *Store) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hashRows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.size, h.md5, h.sha1, h.sha256
		FROM hashes h
		WHERE (SELECT COUNT(*) FROM file_records fr WHERE fr.hash_id = h.id) > 1`)
	if err != nil {
		return nil, err
	}
	defer hashRows.Close()

	var groups []DuplicateGroup
	for hashRows.Next() {
		var h Hash
		if err := hashRows.Scan(&h.ID, &h.Size, &h.MD5, &h.SHA1, &h.SHA256); err != nil {
			return nil, err
		}
		groups = append(groups, DuplicateGroup{Hash: h})
	}
	if err := hashRows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		recRows, err := s.db.QueryContext(ctx, `
			SELECT id, hash_id, name, path, machine, created, modified, scanned, operation, is_archived, archive_path
			FROM file_records WHERE hash_id = ?`, groups[i].Hash.ID)
		if err != nil {
			return nil, err
		}
		for recRows.Next() {
			var rec FileRecord
			var created, modified, scanned int64
			var operation string
			var isArchived int
			var archivePath sql.NullString
			if err := recRows.Scan(&rec.ID, &rec.HashID, &rec.Name, &rec.Path, &rec.Machine,
				&created, &modified, &scanned, &operation, &isArchived, &archivePath); err != nil {
				recRows.Close()
				return nil, err
			}
			rec.Created = time.Unix(0, created).UTC()
			rec.Modified = time.Unix(0, modified).UTC()
			rec.Scanned = time.Unix(0, scanned).UTC()
			rec.Operation = Operation(operation)
			rec.IsArchived = isArchived != 0
			rec.ArchivePath = archivePath.String
			groups[i].Records = append(groups[i].Records, rec)
		}
		recRows.Close()
	}

	return groups, nil
}
