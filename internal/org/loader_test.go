package org

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.org")
	if err := os.WriteFile(path, []byte("* One\nbody\n* Two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 || lines[0] != "* One" || lines[2] != "* Two" {
		t.Errorf("lines = %v", lines)
	}
}

func TestLoadFile_OpenErrorAbortsChain(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.org"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "open") {
		t.Errorf("err = %v, want open stage failure", err)
	}
}

func TestLoadFileAsync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.org")
	if err := os.WriteFile(path, []byte("* A\n* B\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := <-LoadFileAsync(path)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if len(res.Lines) != 2 || res.Lines[0] != "* A" || res.Lines[1] != "* B" {
		t.Errorf("lines = %v, want order preserved", res.Lines)
	}
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.org")
	if err := os.WriteFile(path, []byte("* TODO Task\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDocument(path, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Path != path {
		t.Errorf("path = %q, want %q", doc.Path, path)
	}
	if doc.Root.Headlines[0].Todo.Value != "TODO" {
		t.Errorf("todo = %+v", doc.Root.Headlines[0].Todo)
	}
}
