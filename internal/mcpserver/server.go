// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/org"
	"github.com/starford/ansuz/internal/orgservice"
	"github.com/starford/ansuz/internal/storage"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    *index.DB
	svc   *orgservice.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store storage.Provider, db *index.DB, settings org.Settings) *Server {
	s := &Server{
		store: store,
		db:    db,
		svc:   orgservice.NewService(store, db, settings),
	}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_headlines",
		mcp.WithDescription("Full-text search through org headline titles, body text and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchHeadlines)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of an org document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. projects/thesis.org)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new org document at the specified path. "+
			"Content MUST follow the canonical org outline format (star headlines, "+
			"todo keywords, planning lines, property drawers). Read the contract first via "+
			"the get_org_contract tool or the ansuz://org-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new document (must end with .org)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Org content following the Ansuz org format contract")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("get_org_contract",
		mcp.WithDescription("Returns the canonical Ansuz org format contract. "+
			"Call this before creating or updating documents to ensure correct structure."),
	), s.getOrgContract)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all documents or documents in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_outline",
		mcp.WithDescription("Get the parsed headline tree of an org document as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document to outline")),
	), s.getOutline)

	s.mcp.AddTool(mcp.NewTool("get_agenda",
		mcp.WithDescription("List agenda items (scheduled dates, deadlines and plain timestamps) in a day window."),
		mcp.WithString("from", mcp.Description("Start day YYYY-MM-DD (defaults to today)")),
		mcp.WithString("to", mcp.Description("End day YYYY-MM-DD inclusive (defaults to from + 7 days)")),
	), s.getAgenda)

	s.mcp.AddTool(mcp.NewTool("schedule_headline",
		mcp.WithDescription("Set or replace the SCHEDULED date of a headline identified by document path and line number."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path")),
		mcp.WithNumber("lnum", mcp.Required(), mcp.Description("1-based line number of the headline")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day to schedule, YYYY-MM-DD")),
	), s.scheduleHeadline)

	s.mcp.AddTool(mcp.NewTool("upload_attachment",
		mcp.WithDescription("Download a file from a URL (or decode a data: URI) and store it in the shared attachments directory. "+
			"Returns an org link ready to paste into a document."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or base64 data: URI of the file")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadAttachment)

	// Resource: org format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://org-format", "Org Format Contract",
			mcp.WithResourceDescription("Canonical org outline format that all documents must follow."),
			mcp.WithMIMEType("text/plain"),
		),
		s.readOrgFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchHeadlines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, createErr := s.svc.CreateDocument(ctx, path, []byte(content)); createErr != nil {
		return mcp.NewToolResultError(createErr.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outline, err := s.svc.GetOutline(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(outline, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getAgenda(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const dayLayout = "2006-01-02"
	from := ""
	if v, err := req.RequireString("from"); err == nil {
		from = v
	}
	if from == "" {
		from = time.Now().Format(dayLayout)
	}
	to := ""
	if v, err := req.RequireString("to"); err == nil {
		to = v
	}
	if to == "" {
		start, err := time.Parse(dayLayout, from)
		if err != nil {
			return mcp.NewToolResultError("invalid 'from' day, want YYYY-MM-DD"), nil
		}
		to = start.AddDate(0, 0, 7).Format(dayLayout)
	}

	items, err := s.db.Agenda(from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) scheduleHeadline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lnum, err := req.RequireInt("lnum")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := org.ParseDate(day)
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}

	detail, err := s.svc.Schedule(ctx, path, lnum, date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("scheduled %s line %d for %s\n\n%s", path, lnum, day, detail.Content)), nil
}

func (s *Server) getOrgContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OrgFormatContract), nil
}

func (s *Server) readOrgFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://org-format",
			MIMEType: "text/plain",
			Text:     OrgFormatContract,
		},
	}, nil
}
