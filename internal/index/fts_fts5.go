//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS headlines_fts USING fts5(
			path UNINDEXED,
			lnum UNINDEXED,
			title,
			content,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, h HeadlineRow) error {
	_, err := tx.Exec(`INSERT INTO headlines_fts (path, lnum, title, content, tags) VALUES (?, ?, ?, ?, ?)`,
		h.Path, h.Lnum, h.Title, h.Content, strings.Join(h.Tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM headlines_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search over headline titles, body text
// and tags.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       lnum,
		       title,
		       snippet(headlines_fts, 3, '<b>', '</b>', '...', 64)
		FROM headlines_fts
		WHERE headlines_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Lnum, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
