package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/orgservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// orgRoot is used to resolve the attachments directory.
func NewRouter(svc *orgservice.Service, authEnabled bool, token string, sseHandler http.Handler, orgRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(orgRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents CRUD.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Outline view.
	r.Get("/outline/*", h.GetOutline)

	// Search and agenda.
	r.Get("/search", h.Search)
	r.Get("/agenda", h.Agenda)

	// Headline mutations.
	r.Post("/headlines/schedule", h.Schedule)
	r.Post("/headlines/deadline", h.SetDeadline)
	r.Post("/headlines/properties", h.SetProperties)
	r.Post("/headlines/close", h.CloseHeadline)
	r.Post("/headlines/reopen", h.ReopenHeadline)
	r.Post("/headlines/promote", h.Promote)
	r.Post("/headlines/demote", h.Demote)

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
