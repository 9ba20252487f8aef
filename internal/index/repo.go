package index

import (
	"fmt"
	"time"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path      string
	Format    string
	Checksum  string
	Entries   int
	UpdatedAt time.Time
}

// EntryRow is one recovered string: a node of a decoded document,
// addressed by its ordinal ref within the file.
type EntryRow struct {
	Ref   string
	Kind  string
	Title string
	Body  string
}

// SearchResult represents one search hit.
type SearchResult struct {
	File    string
	Ref     string
	Kind    string
	Title   string
	Snippet string
}

// UpsertFile replaces a file's row and its full entry set within a
// transaction. A re-index is always wholesale; refs are only stable
// within one decode of one file.
func (db *DB) UpsertFile(f FileRow, entries []EntryRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, format, checksum, entries, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			format     = excluded.format,
			checksum   = excluded.checksum,
			entries    = excluded.entries,
			updated_at = excluded.updated_at
	`, f.Path, f.Format, f.Checksum, len(entries), f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM entries WHERE file = ?`, f.Path)
	ftsDelete(tx, f.Path)
	if len(entries) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO entries (file, ref, kind, title, body) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.Exec(f.Path, e.Ref, e.Kind, e.Title, e.Body); err != nil {
				return fmt.Errorf("index: insert entry: %w", err)
			}
		}
		if err := ftsInsert(tx, f.Path, entries); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file, its entries, and its FTS rows.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// ListFiles returns every indexed file ordered by path.
func (db *DB) ListFiles() ([]FileRow, error) {
	rows, err := db.conn.Query(`SELECT path, format, checksum, entries, updated_at FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.Path, &f.Format, &f.Checksum, &f.Entries, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AllChecksums returns path→checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
