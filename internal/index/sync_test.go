package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/org"
	"github.com/starford/ansuz/internal/storage"
)

const syncDoc = `* TODO [#A] Write paper :work:
  SCHEDULED: <2024-06-02 Sun>
  Body text with a uniquesyncword in it.
** DONE Collect sources
* Archived things :ARCHIVE:
  SCHEDULED: <2024-06-03 Mon>
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestIndexDocument(t *testing.T) {
	db := testDB(t)
	if err := IndexDocument(db, org.DefaultSettings(), "notes/paper.org", []byte(syncDoc)); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	cs, _ := db.GetChecksum("notes/paper.org")
	if cs == "" {
		t.Fatal("document not indexed")
	}

	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM headlines WHERE path = 'notes/paper.org'`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("headline count = %d, want 3", count)
	}

	// Archived headline contributes no agenda rows.
	items, err := db.Agenda("2024-06-01", "2024-06-07")
	if err != nil {
		t.Fatalf("Agenda: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 agenda item, got %d: %+v", len(items), items)
	}
	if items[0].Lnum != 1 || items[0].Kind != "SCHEDULED" || items[0].Priority != "A" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestIndexDocument_CategoryFallsBackToFileStem(t *testing.T) {
	db := testDB(t)
	settings := org.DefaultSettings()
	settings.DefaultCategory = ""
	if err := IndexDocument(db, settings, "projects/thesis.org", []byte("* Top\n")); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	var category string
	if err := db.conn.QueryRow(`SELECT category FROM headlines WHERE path = 'projects/thesis.org'`).Scan(&category); err != nil {
		t.Fatal(err)
	}
	if category != "thesis" {
		t.Errorf("category = %q, want %q", category, "thesis")
	}
}

func TestSync_IndexesAndRemovesStale(t *testing.T) {
	db := testDB(t)
	orgDir := t.TempDir()
	store, err := storage.NewFS(orgDir)
	if err != nil {
		t.Fatal(err)
	}

	_ = os.WriteFile(filepath.Join(orgDir, "a.org"), []byte("* Alpha\n"), 0o644)
	_ = os.WriteFile(filepath.Join(orgDir, "b.org"), []byte("* Beta\n"), 0o644)

	if err := Sync(db, store, org.DefaultSettings(), quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	checksums, _ := db.AllChecksums()
	if len(checksums) != 2 {
		t.Fatalf("indexed %d documents, want 2", len(checksums))
	}

	_ = os.Remove(filepath.Join(orgDir, "b.org"))
	if err := Sync(db, store, org.DefaultSettings(), quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	checksums, _ = db.AllChecksums()
	if _, ok := checksums["b.org"]; ok {
		t.Error("stale entry b.org should be removed")
	}
	if _, ok := checksums["a.org"]; !ok {
		t.Error("a.org should still be indexed")
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	db := testDB(t)
	orgDir := t.TempDir()
	store, err := storage.NewFS(orgDir)
	if err != nil {
		t.Fatal(err)
	}

	_ = os.WriteFile(filepath.Join(orgDir, "same.org"), []byte("* Same\n"), 0o644)
	if err := Sync(db, store, org.DefaultSettings(), quietLogger()); err != nil {
		t.Fatal(err)
	}
	before, _ := db.GetChecksum("same.org")

	if err := Sync(db, store, org.DefaultSettings(), quietLogger()); err != nil {
		t.Fatal(err)
	}
	after, _ := db.GetChecksum("same.org")
	if before != after {
		t.Errorf("checksum changed across no-op sync: %q vs %q", before, after)
	}
}
