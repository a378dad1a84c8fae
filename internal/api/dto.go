package api

import (
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/orgservice"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"projects/thesis.org" validate:"required"`
	Content string `json:"content" example:"* TODO Write intro\n" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"* DONE Write intro\n" validate:"required"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = orgservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = orgservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// AgendaResponse wraps agenda items for a day window.
type AgendaResponse struct {
	From  string             `json:"from" example:"2024-06-01" validate:"required"`
	To    string             `json:"to" example:"2024-06-07" validate:"required"`
	Items []index.AgendaItem `json:"items" validate:"required"`
}

// PlanningRequest sets a SCHEDULED or DEADLINE date on a headline.
type PlanningRequest struct {
	Path string `json:"path" example:"projects/thesis.org" validate:"required"`
	Lnum int    `json:"lnum" example:"3" validate:"required"`
	Date string `json:"date" example:"2024-06-02" validate:"required"`
}

// PropertiesRequest merges properties into a headline drawer.
type PropertiesRequest struct {
	Path       string            `json:"path" validate:"required"`
	Lnum       int               `json:"lnum" validate:"required"`
	Properties map[string]string `json:"properties" validate:"required"`
}

// HeadlineRequest addresses a headline without extra arguments.
type HeadlineRequest struct {
	Path string `json:"path" validate:"required"`
	Lnum int    `json:"lnum" validate:"required"`
}

// LevelShiftRequest promotes or demotes a headline.
type LevelShiftRequest struct {
	Path    string `json:"path" validate:"required"`
	Lnum    int    `json:"lnum" validate:"required"`
	Amount  int    `json:"amount,omitempty" example:"1"`
	Cascade bool   `json:"cascade,omitempty"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"figure1.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/figure1.png" validate:"required"`
}
