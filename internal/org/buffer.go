package org

// Buffer is the text host the mutation engine writes through. An editor
// integration supplies its own implementation; the service path uses
// LineBuffer. Line numbers are 1-based.
type Buffer interface {
	GetLine(lnum int) string
	SetLine(lnum int, text string)
	// AppendLines inserts lines after the given line number; after 0 inserts
	// at the top of the buffer.
	AppendLines(after int, lines []string)
	DeleteLine(lnum int)
	LineCount() int
}

// LineBuffer is an in-memory line buffer.
type LineBuffer struct {
	lines []string
}

// NewLineBuffer wraps a copy of lines in a buffer.
func NewLineBuffer(lines []string) *LineBuffer {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &LineBuffer{lines: cp}
}

// GetLine returns the text of line lnum, or "" when out of range.
func (b *LineBuffer) GetLine(lnum int) string {
	if lnum < 1 || lnum > len(b.lines) {
		return ""
	}
	return b.lines[lnum-1]
}

// SetLine replaces the text of line lnum. Out-of-range writes are ignored.
func (b *LineBuffer) SetLine(lnum int, text string) {
	if lnum < 1 || lnum > len(b.lines) {
		return
	}
	b.lines[lnum-1] = text
}

// AppendLines inserts lines after line number after.
func (b *LineBuffer) AppendLines(after int, lines []string) {
	if after < 0 {
		after = 0
	}
	if after > len(b.lines) {
		after = len(b.lines)
	}
	out := make([]string, 0, len(b.lines)+len(lines))
	out = append(out, b.lines[:after]...)
	out = append(out, lines...)
	out = append(out, b.lines[after:]...)
	b.lines = out
}

// DeleteLine removes line lnum.
func (b *LineBuffer) DeleteLine(lnum int) {
	if lnum < 1 || lnum > len(b.lines) {
		return
	}
	b.lines = append(b.lines[:lnum-1], b.lines[lnum:]...)
}

// LineCount returns the number of lines in the buffer.
func (b *LineBuffer) LineCount() int {
	return len(b.lines)
}

// Lines returns a copy of the buffer contents.
func (b *LineBuffer) Lines() []string {
	cp := make([]string, len(b.lines))
	copy(cp, b.lines)
	return cp
}
