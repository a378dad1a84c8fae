// Package org parses plain-text outline documents into headline trees and
// applies structural mutations (scheduling, properties, depth changes) that
// keep the in-memory model and the underlying line buffer consistent.
package org

import (
	"strings"
	"time"
)

// Document is one parsed outline file: a synthetic level-0 root headline
// owning the real headlines, coupled to the buffer the text lives in.
type Document struct {
	Root     *Headline
	Settings Settings
	Path     string

	// Now supplies the current time for closed timestamps; injectable for
	// tests.
	Now func() time.Time

	buf Buffer
}

// Parse builds a document from raw lines. Classification is single-pass:
// each line either opens a headline or attaches as content to the current
// one; sibling/ancestor boundaries seal ranges as they are discovered.
func Parse(lines []string, settings Settings) *Document {
	doc := &Document{
		Settings: settings,
		Now:      time.Now,
		buf:      NewLineBuffer(lines),
	}
	doc.Root = &Headline{
		Level: 0,
		Range: Range{StartLine: 1, StartCol: 1, EndLine: len(lines)},
		doc:   doc,
	}

	current := doc.Root
	for i, line := range lines {
		lnum := i + 1
		if IsHeadline(line) {
			level := headlineLevel(line)
			parent := current
			for parent.Level >= level {
				parent.SetRangeEnd(lnum - 1)
				parent = parent.Parent
			}
			h := NewHeadline(line, lnum, parent, settings)
			h.doc = doc
			parent.AddHeadline(h)
			current = h
			continue
		}
		if current == doc.Root {
			// Preamble before the first headline belongs to the root.
			doc.Root.Content = append(doc.Root.Content, &Content{
				Type:  ContentGeneric,
				Line:  line,
				Range: lineRange(line, lnum),
			})
			continue
		}
		current.AddContent(doc.classifyContent(current, line, lnum))
	}

	for current != doc.Root {
		current.SetRangeEnd(len(lines))
		current = current.Parent
	}
	doc.Root.Range.EndLine = len(lines)
	return doc
}

// ParseString splits raw text into lines and parses it.
func ParseString(text string, settings Settings) *Document {
	return Parse(SplitLines(text), settings)
}

// SplitLines splits text on newlines, dropping one trailing empty line so a
// file ending in "\n" round-trips.
func SplitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// classifyContent produces a Content for a line headed to headline h.
// Planning classification is positional: only the first content line of a
// headline qualifies.
func (doc *Document) classifyContent(h *Headline, line string, lnum int) *Content {
	c := &Content{
		Type:  ContentGeneric,
		Line:  line,
		Range: lineRange(line, lnum),
		Dates: ParseAllFromLine(line, lnum),
	}
	if len(h.Content) == 0 && len(c.Dates) > 0 && isPlanningLine(line) {
		c.Type = ContentPlanning
		tagPlanningDates(line, c.Dates)
	}
	return c
}

func lineRange(line string, lnum int) Range {
	return Range{StartLine: lnum, StartCol: 1, EndLine: lnum, EndCol: len(line)}
}

// AllHeadlines returns every real headline in document (pre-)order.
func (doc *Document) AllHeadlines() []*Headline {
	var out []*Headline
	var walk func(h *Headline)
	walk = func(h *Headline) {
		for _, child := range h.Headlines {
			out = append(out, child)
			walk(child)
		}
	}
	walk(doc.Root)
	return out
}

// HeadlineAt returns the deepest headline whose range covers lnum, or nil
// when the line sits in the document preamble.
func (doc *Document) HeadlineAt(lnum int) *Headline {
	var found *Headline
	var walk func(h *Headline)
	walk = func(h *Headline) {
		for _, child := range h.Headlines {
			if child.Range.StartLine <= lnum && lnum <= child.Range.EndLine {
				found = child
				walk(child)
				return
			}
		}
	}
	walk(doc.Root)
	return found
}

// Lines returns the current buffer contents.
func (doc *Document) Lines() []string {
	if lb, ok := doc.buf.(*LineBuffer); ok {
		return lb.Lines()
	}
	out := make([]string, doc.buf.LineCount())
	for i := range out {
		out[i] = doc.buf.GetLine(i + 1)
	}
	return out
}

// String renders the buffer back to text with a trailing newline.
func (doc *Document) String() string {
	lines := doc.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// shiftRanges moves every recorded position strictly after line `after` by
// delta lines, keeping tree ranges coherent across buffer inserts/deletes.
func (doc *Document) shiftRanges(after, delta int) {
	var shift func(h *Headline)
	shiftRange := func(r *Range) {
		if r.StartLine > after {
			r.StartLine += delta
		}
		if r.EndLine > after {
			r.EndLine += delta
		}
	}
	shift = func(h *Headline) {
		shiftRange(&h.Range)
		shiftRange(&h.Todo.Range)
		shiftRange(&h.Properties.Range)
		if h.ID > after {
			h.ID += delta
		}
		for _, c := range h.Content {
			shiftRange(&c.Range)
			for _, d := range c.Dates {
				shiftRange(&d.Range)
			}
		}
		for _, d := range h.Dates {
			shiftRange(&d.Range)
		}
		for _, child := range h.Headlines {
			shift(child)
		}
	}
	shift(doc.Root)
}

// insertContentLines writes new content lines after line `after`, owned by
// headline h. The model is updated first; the buffer write follows.
func (doc *Document) insertContentLines(h *Headline, after int, texts []string, types []ContentType) []*Content {
	doc.shiftRanges(after, len(texts))

	entries := make([]*Content, len(texts))
	for i, text := range texts {
		entries[i] = &Content{
			Type:  types[i],
			Line:  text,
			Range: lineRange(text, after+i+1),
		}
	}

	// Splice into h.Content keeping document order.
	idx := 0
	for idx < len(h.Content) && h.Content[idx].Range.StartLine <= after {
		idx++
	}
	h.Content = append(h.Content[:idx], append(entries, h.Content[idx:]...)...)

	if h.Range.EndLine < after+len(texts) {
		h.Range.EndLine = after + len(texts)
	}
	// Ancestors whose span ended exactly at the insertion point are not
	// touched by shiftRanges; widen them so they keep covering h.
	for p := h.Parent; p != nil; p = p.Parent {
		if p.Range.EndLine < h.Range.EndLine {
			p.Range.EndLine = h.Range.EndLine
		}
	}
	doc.buf.AppendLines(after, texts)
	return entries
}

// deleteContentLine removes the content entry at line lnum from headline h
// and the buffer, shifting later positions up.
func (doc *Document) deleteContentLine(h *Headline, lnum int) {
	for i, c := range h.Content {
		if c.Range.StartLine == lnum {
			h.Content = append(h.Content[:i], h.Content[i+1:]...)
			break
		}
	}
	// Shift from lnum-1 so spans ending exactly at the deleted line shrink.
	doc.shiftRanges(lnum-1, -1)
	doc.buf.DeleteLine(lnum)
}
