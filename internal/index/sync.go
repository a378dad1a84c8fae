package index

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/org"
	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the org root and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, settings org.Settings, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDocument(db, settings, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexDocument parses data as an org document and upserts its headline and
// agenda rows. When no default category is configured, the file stem stands
// in so every row has one.
func IndexDocument(db *DB, settings org.Settings, path string, data []byte) error {
	if settings.DefaultCategory == "" {
		settings.DefaultCategory = fileStem(path)
	}
	doc := org.ParseString(string(data), settings)
	doc.Path = path

	var headlines []HeadlineRow
	var agenda []AgendaRow
	for _, h := range doc.AllHeadlines() {
		headlines = append(headlines, headlineRow(path, h))
		if h.IsArchived() {
			continue
		}
		for _, d := range h.ValidDatesForAgenda() {
			agenda = append(agenda, AgendaRow{
				Path: path,
				Lnum: h.ID,
				Day:  d.DayString(),
				Kind: d.Type.String(),
			})
		}
	}

	row := DocumentRow{
		Path:      path,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertDocument(row, headlines, agenda)
}

func headlineRow(path string, h *org.Headline) HeadlineRow {
	var body strings.Builder
	for _, c := range h.Content {
		if body.Len() > 0 {
			body.WriteByte('\n')
		}
		body.WriteString(c.Line)
	}
	return HeadlineRow{
		Path:     path,
		Lnum:     h.ID,
		Level:    h.Level,
		Title:    h.Title,
		Todo:     h.Todo.Value,
		TodoType: string(h.Todo.Type),
		Priority: h.Priority,
		Tags:     h.Tags,
		Category: h.GetCategory(),
		Content:  body.String(),
		Archived: h.IsArchived(),
	}
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
