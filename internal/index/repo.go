package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// HeadlineRow represents one indexed headline.
type HeadlineRow struct {
	Path     string
	Lnum     int
	Level    int
	Title    string
	Todo     string
	TodoType string
	Priority string
	Tags     []string
	Category string
	Content  string
	Archived bool
}

// AgendaRow is one valid agenda date contributed by a headline.
type AgendaRow struct {
	Path string
	Lnum int
	Day  string // YYYY-MM-DD
	Kind string // SCHEDULED, DEADLINE or NONE
}

// AgendaItem is one agenda query hit.
type AgendaItem struct {
	Path     string `json:"path"`
	Lnum     int    `json:"lnum"`
	Title    string `json:"title"`
	Todo     string `json:"todo,omitempty"`
	Priority string `json:"priority,omitempty"`
	Category string `json:"category,omitempty"`
	Day      string `json:"day"`
	Kind     string `json:"kind"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Lnum    int    `json:"lnum"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDocument replaces a document's index entry, its headlines, agenda
// dates and FTS rows within a transaction.
func (db *DB) UpsertDocument(doc DocumentRow, headlines []HeadlineRow, agenda []AgendaRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, doc.Path, doc.Checksum, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// Replace headlines: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM headlines WHERE path = ?`, doc.Path)
	_, _ = tx.Exec(`DELETE FROM agenda_dates WHERE path = ?`, doc.Path)
	ftsDelete(tx, doc.Path)

	if len(headlines) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO headlines (path, lnum, level, title, todo, todo_type, priority, tags, category, content, archived)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare headline insert: %w", err)
		}
		defer stmt.Close()
		for _, h := range headlines {
			tagsJSON, _ := json.Marshal(h.Tags)
			if _, err := stmt.Exec(h.Path, h.Lnum, h.Level, h.Title, h.Todo, h.TodoType,
				h.Priority, string(tagsJSON), h.Category, h.Content, h.Archived); err != nil {
				return fmt.Errorf("index: insert headline: %w", err)
			}
			if err := ftsUpsert(tx, h); err != nil {
				return err
			}
		}
	}

	if len(agenda) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO agenda_dates (path, lnum, day, kind) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare agenda insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range agenda {
			if _, err := stmt.Exec(a.Path, a.Lnum, a.Day, a.Kind); err != nil {
				return fmt.Errorf("index: insert agenda date: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its headlines, agenda dates and FTS rows.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM agenda_dates WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM headlines WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed document keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
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

// ListDocuments returns paginated document rows plus the total count.
func (db *DB) ListDocuments(limit, offset int) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, checksum, updated_at
		FROM documents
		ORDER BY path
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		if err := rows.Scan(&d.Path, &d.Checksum, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Agenda returns agenda items whose day falls within [from, to], joined with
// their headline rows. Archived headlines are excluded.
func (db *DB) Agenda(from, to string) ([]AgendaItem, error) {
	rows, err := db.conn.Query(`
		SELECT a.path, a.lnum, h.title, h.todo, h.priority, h.category, a.day, a.kind
		FROM agenda_dates a
		JOIN headlines h ON h.path = a.path AND h.lnum = a.lnum
		WHERE a.day >= ? AND a.day <= ? AND h.archived = 0
		ORDER BY a.day, a.path, a.lnum
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("index: agenda: %w", err)
	}
	defer rows.Close()

	var out []AgendaItem
	for rows.Next() {
		var it AgendaItem
		if err := rows.Scan(&it.Path, &it.Lnum, &it.Title, &it.Todo, &it.Priority, &it.Category, &it.Day, &it.Kind); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
