package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/org"
	"github.com/starford/ansuz/internal/orgservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *orgservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *orgservice.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the URL (everything after the
// route prefix). Supports encoded slashes from OpenAPI clients
// (e.g. projects%2Fthesis.org).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List documents with pagination
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"total":     total,
	})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a single document by path
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GetOutline handles GET /api/outline/*.
//
//	@Summary		Get the headline tree of a document
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{array}		org.Headline
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/outline/{path} [get]
func (h *Handler) GetOutline(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	outline, err := h.svc.GetOutline(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get outline failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":    path,
		"outline": outline,
	})
}

// CreateDocument handles POST /api/documents.
//
//	@Summary		Create a new document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	doc, err := h.svc.CreateDocument(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("document already exists"))
		} else {
			slog.Error("create document failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/*.
//
//	@Summary		Update a document with optimistic concurrency
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string					true	"Document path"
//	@Param			If-Match	header	string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateDocumentRequest	true	"Updated content"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req UpdateDocumentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	doc, err := h.svc.UpdateDocument(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("update document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/*.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			path	path	string	true	"Document path"
//	@Success		204		"Document deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteDocument(r.Context(), path); err != nil {
		slog.Error("delete document failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across headlines
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Agenda handles GET /api/agenda. The window defaults to today through
// seven days out when from/to are omitted.
//
//	@Summary		Agenda items in a day window
//	@Tags			agenda
//	@Produce		json
//	@Param			from	query		string	false	"Start day (YYYY-MM-DD)"
//	@Param			to		query		string	false	"End day (YYYY-MM-DD), inclusive"
//	@Success		200		{object}	AgendaResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/agenda [get]
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	const dayLayout = "2006-01-02"
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = time.Now().Format(dayLayout)
	}
	if to == "" {
		start, err := time.Parse(dayLayout, from)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid 'from' day"))
			return
		}
		to = start.AddDate(0, 0, 7).Format(dayLayout)
	}
	for _, day := range []string{from, to} {
		if _, err := time.Parse(dayLayout, day); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("days must be YYYY-MM-DD"))
			return
		}
	}

	items, err := h.svc.Agenda(r.Context(), from, to)
	if err != nil {
		slog.Error("agenda failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":  from,
		"to":    to,
		"items": items,
	})
}

// mutationError maps domain errors to HTTP responses for headline mutations.
func mutationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrTopLevel):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("headline already at top level"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (h *Handler) planningDate(w http.ResponseWriter, r *http.Request) (*PlanningRequest, *org.Date, bool) {
	var req PlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return nil, nil, false
	}
	if req.Path == "" || req.Lnum <= 0 || req.Date == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path, lnum and date are required"))
		return nil, nil, false
	}
	date, err := org.ParseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want YYYY-MM-DD"))
		return nil, nil, false
	}
	return &req, date, true
}

// Schedule handles POST /api/headlines/schedule.
//
//	@Summary		Set or replace a SCHEDULED date
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PlanningRequest	true	"Target headline and date"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/headlines/schedule [post]
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.planningDate(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Schedule(r.Context(), req.Path, req.Lnum, date)
	if err != nil {
		mutationError(w, "schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SetDeadline handles POST /api/headlines/deadline.
//
//	@Summary		Set or replace a DEADLINE date
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PlanningRequest	true	"Target headline and date"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/headlines/deadline [post]
func (h *Handler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.planningDate(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.SetDeadline(r.Context(), req.Path, req.Lnum, date)
	if err != nil {
		mutationError(w, "set deadline", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SetProperties handles POST /api/headlines/properties.
//
//	@Summary		Merge properties into a headline drawer
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PropertiesRequest	true	"Target headline and properties"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/headlines/properties [post]
func (h *Handler) SetProperties(w http.ResponseWriter, r *http.Request) {
	var req PropertiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Lnum <= 0 || len(req.Properties) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("path, lnum and properties are required"))
		return
	}
	doc, err := h.svc.SetProperties(r.Context(), req.Path, req.Lnum, req.Properties)
	if err != nil {
		mutationError(w, "set properties", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CloseHeadline handles POST /api/headlines/close.
//
//	@Summary		Stamp a CLOSED timestamp on a headline
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HeadlineRequest	true	"Target headline"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/headlines/close [post]
func (h *Handler) CloseHeadline(w http.ResponseWriter, r *http.Request) {
	req, ok := h.headlineTarget(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.CloseHeadline(r.Context(), req.Path, req.Lnum)
	if err != nil {
		mutationError(w, "close headline", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ReopenHeadline handles POST /api/headlines/reopen.
//
//	@Summary		Remove the CLOSED timestamp from a headline
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HeadlineRequest	true	"Target headline"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/headlines/reopen [post]
func (h *Handler) ReopenHeadline(w http.ResponseWriter, r *http.Request) {
	req, ok := h.headlineTarget(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.ReopenHeadline(r.Context(), req.Path, req.Lnum)
	if err != nil {
		mutationError(w, "reopen headline", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) headlineTarget(w http.ResponseWriter, r *http.Request) (*HeadlineRequest, bool) {
	var req HeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return nil, false
	}
	if req.Path == "" || req.Lnum <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("path and lnum are required"))
		return nil, false
	}
	return &req, true
}

// Promote handles POST /api/headlines/promote.
//
//	@Summary		Decrease a headline's level
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LevelShiftRequest	true	"Target headline and shift"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/headlines/promote [post]
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.levelShift(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Promote(r.Context(), req.Path, req.Lnum, req.Amount, req.Cascade)
	if err != nil {
		mutationError(w, "promote", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Demote handles POST /api/headlines/demote.
//
//	@Summary		Increase a headline's level
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LevelShiftRequest	true	"Target headline and shift"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/headlines/demote [post]
func (h *Handler) Demote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.levelShift(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Demote(r.Context(), req.Path, req.Lnum, req.Amount, req.Cascade)
	if err != nil {
		mutationError(w, "demote", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) levelShift(w http.ResponseWriter, r *http.Request) (*LevelShiftRequest, bool) {
	var req LevelShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return nil, false
	}
	if req.Path == "" || req.Lnum <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("path and lnum are required"))
		return nil, false
	}
	return &req, true
}
