package org

import (
	"fmt"
	"io"
	"os"
)

// LoadResult is the outcome of an asynchronous document load.
type LoadResult struct {
	Lines []string
	Err   error
}

// LoadFile reads a document as a sequential open, stat, read, close pipeline.
// The first failing stage aborts the chain and is surfaced to the caller; no
// partial result is returned.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("org: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("org: stat %s: %w", path, err)
	}

	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil && err != io.ErrUnexpectedEOF {
		_ = f.Close()
		return nil, fmt.Errorf("org: read %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("org: close %s: %w", path, err)
	}

	return SplitLines(string(buf)), nil
}

// LoadFileAsync runs LoadFile off the caller's goroutine and delivers the
// result on the returned channel. Line order is preserved.
func LoadFileAsync(path string) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		lines, err := LoadFile(path)
		ch <- LoadResult{Lines: lines, Err: err}
		close(ch)
	}()
	return ch
}

// LoadDocument loads and parses a document file in one step.
func LoadDocument(path string, settings Settings) (*Document, error) {
	lines, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	doc := Parse(lines, settings)
	doc.Path = path
	return doc, nil
}
