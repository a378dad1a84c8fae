// Package orgservice coordinates storage, parsing and index operations for
// org documents and their headlines.
package orgservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/org"
	"github.com/starford/ansuz/internal/storage"
)

// DocumentDetail is the full representation of an org document.
type DocumentDetail struct {
	Path     string          `json:"path"`
	Content  string          `json:"content"`
	Checksum string          `json:"checksum"`
	Outline  []*org.Headline `json:"outline"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	db       *index.DB
	settings org.Settings
}

// NewService creates a new org document service.
func NewService(store storage.Provider, db *index.DB, settings org.Settings) *Service {
	return &Service{store: store, db: db, settings: settings}
}

// Settings returns the outline settings the service parses with.
func (s *Service) Settings() org.Settings {
	return s.settings
}

// GetDocument reads a document from storage and parses its outline.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(path, data), nil
}

// CreateDocument writes a new document and indexes it.
func (s *Service) CreateDocument(_ context.Context, path string, content []byte) (*DocumentDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexDocument(s.db, s.settings, path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content), nil
}

// UpdateDocument writes updated content with optimistic concurrency.
func (s *Service) UpdateDocument(_ context.Context, path string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexDocument(s.db, s.settings, path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content), nil
}

// DeleteDocument removes a document from storage and index.
func (s *Service) DeleteDocument(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDocument(path)
}

// ListDocuments returns paginated documents.
func (s *Service) ListDocuments(_ context.Context, limit, offset int) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{Path: r.Path, Checksum: r.Checksum, UpdatedAt: r.UpdatedAt}
	}
	return items, total, nil
}

// GetOutline parses a document and returns its headline tree.
func (s *Service) GetOutline(ctx context.Context, path string) ([]*org.Headline, error) {
	detail, err := s.GetDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	return detail.Outline, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Agenda returns indexed agenda items in the [from, to] day window.
func (s *Service) Agenda(_ context.Context, from, to string) ([]index.AgendaItem, error) {
	return s.db.Agenda(from, to)
}

// MutateFunc applies an in-place change to one headline.
type MutateFunc func(h *org.Headline) error

// MutateHeadline loads the document, applies fn to the headline whose span
// covers lnum, writes the document back and reindexes it. The returned detail
// reflects the post-mutation state.
func (s *Service) MutateHeadline(_ context.Context, path string, lnum int, fn MutateFunc) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	doc := org.ParseString(string(data), s.settings)
	doc.Path = path
	h := doc.HeadlineAt(lnum)
	if h == nil {
		return nil, fmt.Errorf("no headline at line %d: %w", lnum, apperr.ErrNotFound)
	}
	if err := fn(h); err != nil {
		return nil, err
	}

	updated := []byte(doc.String())
	if err := s.store.Write(path, updated); err != nil {
		return nil, err
	}
	if err := index.IndexDocument(s.db, s.settings, path, updated); err != nil {
		return nil, err
	}
	return s.buildDetail(path, updated), nil
}

// Schedule sets or replaces the SCHEDULED date of the headline at lnum.
func (s *Service) Schedule(ctx context.Context, path string, lnum int, date *org.Date) (*DocumentDetail, error) {
	return s.MutateHeadline(ctx, path, lnum, func(h *org.Headline) error {
		return h.AddScheduledDate(date)
	})
}

// SetDeadline sets or replaces the DEADLINE date of the headline at lnum.
func (s *Service) SetDeadline(ctx context.Context, path string, lnum int, date *org.Date) (*DocumentDetail, error) {
	return s.MutateHeadline(ctx, path, lnum, func(h *org.Headline) error {
		return h.AddDeadlineDate(date)
	})
}

// SetProperties merges props into the property drawer of the headline at
// lnum, creating the drawer when missing.
func (s *Service) SetProperties(ctx context.Context, path string, lnum int, props map[string]string) (*DocumentDetail, error) {
	return s.MutateHeadline(ctx, path, lnum, func(h *org.Headline) error {
		_, _, err := h.AddProperties(props)
		return err
	})
}

// CloseHeadline stamps a CLOSED timestamp on the headline at lnum.
func (s *Service) CloseHeadline(ctx context.Context, path string, lnum int) (*DocumentDetail, error) {
	return s.MutateHeadline(ctx, path, lnum, func(h *org.Headline) error {
		return h.AddClosedDate()
	})
}

// ReopenHeadline removes the CLOSED timestamp from the headline at lnum.
func (s *Service) ReopenHeadline(ctx context.Context, path string, lnum int) (*DocumentDetail, error) {
	return s.MutateHeadline(ctx, path, lnum, func(h *org.Headline) error {
		return h.RemoveClosedDate()
	})
}

// Promote decreases the level of the headline at lnum by amount.
func (s *Service) Promote(ctx context.Context, path string, lnum, amount int, cascade bool) (*DocumentDetail, error) {
	if amount <= 0 {
		amount = 1
	}
	return s.MutateHeadline(ctx, path, lnum, func(h *org.Headline) error {
		return h.Promote(amount, cascade)
	})
}

// Demote increases the level of the headline at lnum by amount.
func (s *Service) Demote(ctx context.Context, path string, lnum, amount int, cascade bool) (*DocumentDetail, error) {
	if amount <= 0 {
		amount = 1
	}
	return s.MutateHeadline(ctx, path, lnum, func(h *org.Headline) error {
		return h.Demote(amount, cascade)
	})
}

// buildDetail constructs a DocumentDetail from raw data without re-reading
// the file.
func (s *Service) buildDetail(path string, data []byte) *DocumentDetail {
	doc := org.ParseString(string(data), s.settings)
	doc.Path = path
	return &DocumentDetail{
		Path:      path,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Outline:   doc.Root.Headlines,
		UpdatedAt: time.Now(),
	}
}
