package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/org"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	_, store := testutil.TestOrgDir(t)
	db := testutil.TestDB(t)

	srv := New(store, db, org.DefaultSettings())
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_headlines":
		result, err = srv.searchHeadlines(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "create_document":
		result, err = srv.createDocument(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "get_outline":
		result, err = srv.getOutline(ctx, req)
	case "get_agenda":
		result, err = srv.getAgenda(ctx, req)
	case "schedule_headline":
		result, err = srv.scheduleHeadline(ctx, req)
	case "get_org_contract":
		result, err = srv.getOrgContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadDocument(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_document", map[string]any{
		"path":    "test.org",
		"content": "* TODO Test\n  Hello\n",
	})
	text := resultText(r)
	if text != "created: test.org" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_document", map[string]any{
		"path": "test.org",
	})
	text = resultText(r)
	if text != "* TODO Test\n  Hello\n" {
		t.Errorf("read result = %q", text)
	}
}

func TestCreateDocument_Duplicate(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_document", map[string]any{"path": "dup.org", "content": "* A\n"})
	r := callTool(t, srv, "create_document", map[string]any{"path": "dup.org", "content": "* B\n"})
	if !r.IsError {
		t.Error("expected error for duplicate create")
	}
}

func TestListDocuments(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("a.org", []byte("* a\n"))
	_ = store.Write("b.org", []byte("* b\n"))

	r := callTool(t, srv, "list_documents", map[string]any{})
	text := resultText(r)
	if !strings.Contains(text, "a.org") || !strings.Contains(text, "b.org") {
		t.Errorf("list = %q", text)
	}
}

func TestReadDocumentMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_document", map[string]any{"path": "nope.org"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestGetOutline(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_document", map[string]any{
		"path":    "o.org",
		"content": "* TODO [#A] Root :work:\n** Child\n",
	})

	r := callTool(t, srv, "get_outline", map[string]any{"path": "o.org"})
	var outline []org.Headline
	if err := json.Unmarshal([]byte(resultText(r)), &outline); err != nil {
		t.Fatalf("outline not valid JSON: %v", err)
	}
	if len(outline) != 1 || outline[0].Title != "Root" || len(outline[0].Headlines) != 1 {
		t.Errorf("outline = %+v", outline)
	}
}

func TestSearchHeadlines(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_document", map[string]any{
		"path":    "s.org",
		"content": "* Heading\n  body with uniquemcpword\n",
	})

	r := callTool(t, srv, "search_headlines", map[string]any{"query": "uniquemcpword"})
	if !strings.Contains(resultText(r), "s.org") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestScheduleHeadlineAndAgenda(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_document", map[string]any{
		"path":    "plan.org",
		"content": "* Task\n",
	})

	r := callTool(t, srv, "schedule_headline", map[string]any{
		"path": "plan.org",
		"lnum": float64(1),
		"date": "2024-07-01",
	})
	if r.IsError {
		t.Fatalf("schedule failed: %q", resultText(r))
	}
	if !strings.Contains(resultText(r), "SCHEDULED: <2024-07-01 Mon>") {
		t.Errorf("result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_agenda", map[string]any{"from": "2024-07-01", "to": "2024-07-01"})
	var items []index.AgendaItem
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatalf("agenda not valid JSON: %v (%q)", err, resultText(r))
	}
	if len(items) != 1 || items[0].Kind != "SCHEDULED" {
		t.Errorf("agenda = %+v", items)
	}
}

func TestGetOrgContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_org_contract", map[string]any{})
	text := resultText(r)
	if !strings.Contains(text, ":PROPERTIES:") || !strings.Contains(text, "SCHEDULED") {
		t.Error("contract missing org fundamentals")
	}
}
