package org

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
)

var closedFragmentRe = regexp.MustCompile(`\s*CLOSED:\s*[\[<][^\]>]*[\]>]`)

// AddProperties writes key/value pairs into the headline's property drawer,
// creating the drawer when none exists. Existing keys are updated in place
// by replacing the first textual occurrence of the old value on their line.
// It reports whether a new drawer was created and the indentation applied,
// so callers can position follow-up edits.
func (h *Headline) AddProperties(props map[string]string) (created bool, indent string, err error) {
	if h.doc == nil {
		return false, "", fmt.Errorf("org: headline is not attached to a document")
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if h.Properties.Valid {
		startLine := h.Properties.Range.StartLine
		indent = leadingWhitespace(h.doc.buf.GetLine(startLine))
		for _, k := range keys {
			if old, ok := h.Properties.Items[k]; ok {
				h.updateProperty(k, old, props[k])
			} else {
				h.appendProperty(k, props[k], indent)
			}
		}
		return false, indent, nil
	}

	if h.doc.Settings.IndentMode {
		indent = strings.Repeat(" ", h.Level+1)
	}

	after := h.Range.StartLine
	if len(h.Content) > 0 && h.Content[0].Type == ContentPlanning {
		after = h.Content[0].Range.StartLine
	}

	texts := make([]string, 0, len(keys)+2)
	types := make([]ContentType, 0, len(keys)+2)
	texts = append(texts, indent+":PROPERTIES:")
	types = append(types, ContentDrawerStart)
	for _, k := range keys {
		texts = append(texts, fmt.Sprintf("%s:%s: %s", indent, k, props[k]))
		types = append(types, ContentDrawerBody)
	}
	texts = append(texts, indent+":END:")
	types = append(types, ContentDrawerEnd)

	entries := h.doc.insertContentLines(h, after, texts, types)
	for i, k := range keys {
		entries[i+1].Drawer = map[string]string{k: props[k]}
	}

	h.Properties.Valid = true
	h.Properties.Range = Range{
		StartLine: entries[0].Range.StartLine,
		StartCol:  1,
		EndLine:   entries[len(entries)-1].Range.StartLine,
		EndCol:    len(texts[len(texts)-1]),
	}
	if h.Properties.Items == nil {
		h.Properties.Items = make(map[string]string, len(props))
	}
	for k, v := range props {
		h.Properties.Items[k] = v
	}
	return true, indent, nil
}

// updateProperty rewrites the value of an existing drawer item in place,
// replacing only the first occurrence of the old value on its line.
func (h *Headline) updateProperty(key, old, value string) {
	for _, c := range h.Content {
		if c.Type != ContentDrawerBody || c.Drawer == nil {
			continue
		}
		if _, ok := c.Drawer[key]; !ok {
			continue
		}
		c.Drawer[key] = value
		if old == "" {
			c.Line = strings.TrimRight(c.Line, " \t") + " " + value
		} else {
			c.Line = strings.Replace(c.Line, old, value, 1)
		}
		c.Range.EndCol = len(c.Line)
		h.Properties.Items[key] = value
		h.doc.buf.SetLine(c.Range.StartLine, c.Line)
		return
	}
}

// appendProperty inserts a new ":KEY: value" line right after the drawer's
// start line, reusing the drawer's indentation.
func (h *Headline) appendProperty(key, value, indent string) {
	text := fmt.Sprintf("%s:%s: %s", indent, key, value)
	entries := h.doc.insertContentLines(h, h.Properties.Range.StartLine, []string{text}, []ContentType{ContentDrawerBody})
	entries[0].Drawer = map[string]string{key: value}
	if h.Properties.Items == nil {
		h.Properties.Items = make(map[string]string)
	}
	h.Properties.Items[key] = value
}

// AddScheduledDate sets the SCHEDULED date. When one already exists only its
// year/month/day text is spliced at the stored offsets, preserving time of
// day and repeater suffixes.
func (h *Headline) AddScheduledDate(date *Date) error {
	if existing := h.GetScheduledDate(); existing != nil {
		return h.spliceDate(existing, date)
	}
	return h.addPlanningDate(date, DateScheduled, true)
}

// AddDeadlineDate sets the DEADLINE date, splicing in place when present.
func (h *Headline) AddDeadlineDate(date *Date) error {
	if existing := h.GetDeadlineDate(); existing != nil {
		return h.spliceDate(existing, date)
	}
	return h.addPlanningDate(date, DateDeadline, true)
}

// AddClosedDate records a CLOSED timestamp with the current date. A headline
// that already carries one is left untouched.
func (h *Headline) AddClosedDate() error {
	if h.getClosedDate() != nil {
		return nil
	}
	return h.addPlanningDate(NewDate(h.doc.Now()), DateClosed, false)
}

// RemoveClosedDate strips the CLOSED fragment from the planning line. If the
// line becomes blank it is deleted rather than left empty.
func (h *Headline) RemoveClosedDate() error {
	closed := h.getClosedDate()
	if closed == nil {
		return nil
	}
	lnum := closed.Range.StartLine
	var entry *Content
	for _, c := range h.Content {
		if c.Range.StartLine == lnum {
			entry = c
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("org: closed date line %d has no content entry", lnum)
	}

	for i, d := range h.Dates {
		if d == closed {
			h.Dates = append(h.Dates[:i], h.Dates[i+1:]...)
			break
		}
	}

	loc := closedFragmentRe.FindStringIndex(entry.Line)
	if loc == nil {
		return fmt.Errorf("org: closed fragment not found on line %d", lnum)
	}
	newLine := entry.Line[:loc[0]] + entry.Line[loc[1]:]
	if strings.TrimSpace(newLine) == "" {
		h.doc.deleteContentLine(h, lnum)
		return nil
	}
	entry.Line = newLine
	entry.Range.EndCol = len(newLine)
	entry.Dates = dropDate(entry.Dates, closed.Range)
	// Dates that followed the removed fragment keep their splice offsets
	// valid only if shifted left by the removed width.
	h.shiftColsFrom(lnum, loc[1], loc[0]-loc[1])
	h.doc.buf.SetLine(lnum, newLine)
	return nil
}

// shiftColsFrom moves the column offsets of every date on line lnum whose
// start lies at or beyond the 0-based byte offset col by delta. Used when a
// fragment is cut out of the middle of a line.
func (h *Headline) shiftColsFrom(lnum, col, delta int) {
	for _, d := range h.Dates {
		if d.Range.StartLine == lnum && d.Range.StartCol-1 >= col {
			d.Range.StartCol += delta
			d.Range.EndCol += delta
		}
	}
	for _, c := range h.Content {
		if c.Range.StartLine != lnum {
			continue
		}
		for _, d := range c.Dates {
			if d.Range.StartCol-1 >= col {
				d.Range.StartCol += delta
				d.Range.EndCol += delta
			}
		}
	}
}

func dropDate(dates []*Date, r Range) []*Date {
	out := dates[:0]
	for _, d := range dates {
		if d.Range == r {
			continue
		}
		out = append(out, d)
	}
	return out
}

// spliceDate rewrites only the YYYY-MM-DD portion of an existing timestamp
// at its stored offsets; the rest of the line is untouched.
func (h *Headline) spliceDate(existing, date *Date) error {
	lnum := existing.Range.StartLine
	line := h.doc.buf.GetLine(lnum)
	start := existing.Range.StartCol // 0-based offset of first char after the bracket
	if start+10 > len(line) {
		return fmt.Errorf("org: timestamp range out of bounds on line %d", lnum)
	}
	newLine := line[:start] + date.DayString() + line[start+10:]

	existing.Set(date.Year, date.Month, date.Day)
	for _, c := range h.Content {
		if c.Range.StartLine == lnum {
			c.Line = newLine
			for _, d := range c.Dates {
				if d.Range == existing.Range {
					d.Set(date.Year, date.Month, date.Day)
				}
			}
			break
		}
	}
	h.doc.buf.SetLine(lnum, newLine)
	return nil
}

// addPlanningDate appends "KEYWORD: <date>" to the existing planning line,
// or inserts a fresh planning line directly under the title.
func (h *Headline) addPlanningDate(date *Date, role DateType, active bool) error {
	keyword := role.String()
	wrapped := date.ToWrappedString(active)

	if len(h.Content) > 0 && h.Content[0].Type == ContentPlanning {
		entry := h.Content[0]
		text := entry.Line + " " + keyword + ": " + wrapped
		col := len(text) - len(wrapped) + 1

		d := date.CloneWithType(role)
		d.Active = active && role != DateClosed
		d.Range = Range{StartLine: entry.Range.StartLine, StartCol: col, EndLine: entry.Range.StartLine, EndCol: len(text)}

		entry.Line = text
		entry.Range.EndCol = len(text)
		entry.Dates = append(entry.Dates, d)
		h.Dates = append(h.Dates, d.Clone())
		h.doc.buf.SetLine(entry.Range.StartLine, text)
		return nil
	}

	var indent string
	if h.doc.Settings.IndentMode {
		indent = strings.Repeat(" ", h.Level+1)
	}
	text := indent + keyword + ": " + wrapped
	entries := h.doc.insertContentLines(h, h.Range.StartLine, []string{text}, []ContentType{ContentPlanning})
	entry := entries[0]

	col := len(text) - len(wrapped) + 1
	d := date.CloneWithType(role)
	d.Active = active && role != DateClosed
	d.Range = Range{StartLine: entry.Range.StartLine, StartCol: col, EndLine: entry.Range.StartLine, EndCol: len(text)}
	entry.Dates = []*Date{d}
	h.Dates = append(h.Dates, d.Clone())
	return nil
}

// shiftCols moves column offsets recorded on line lnum by delta, keeping
// todo-keyword and timestamp splice offsets valid after a prefix change.
func (h *Headline) shiftCols(lnum, delta int) {
	if h.Todo.Value != "" && h.Todo.Range.StartLine == lnum {
		h.Todo.Range.StartCol += delta
		h.Todo.Range.EndCol += delta
	}
	for _, d := range h.Dates {
		if d.Range.StartLine == lnum {
			d.Range.StartCol += delta
			d.Range.EndCol += delta
		}
	}
	for _, c := range h.Content {
		if c.Range.StartLine != lnum {
			continue
		}
		for _, d := range c.Dates {
			d.Range.StartCol += delta
			d.Range.EndCol += delta
		}
	}
}

// Promote removes amount leading outline markers from the title line. In
// indent mode content lines lose the same amount of leading whitespace, but
// only when those characters are entirely blank. Promoting a level-1
// headline is rejected.
func (h *Headline) Promote(amount int, cascade bool) error {
	if amount < 1 {
		amount = 1
	}
	if h.Level-amount < 1 {
		return fmt.Errorf("org: cannot promote top level headline: %w", apperr.ErrTopLevel)
	}

	h.Level -= amount
	h.Line = h.Line[amount:]
	h.shiftCols(h.Range.StartLine, -amount)
	h.doc.buf.SetLine(h.Range.StartLine, h.Line)

	if h.doc.Settings.IndentMode {
		for _, c := range h.Content {
			if len(c.Line) < amount || strings.TrimSpace(c.Line[:amount]) != "" {
				continue
			}
			c.Line = c.Line[amount:]
			c.Range.EndCol = len(c.Line)
			h.shiftCols(c.Range.StartLine, -amount)
			h.doc.buf.SetLine(c.Range.StartLine, c.Line)
		}
	}

	if cascade {
		for _, child := range h.Headlines {
			if err := child.Promote(amount, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// Demote prepends amount outline markers to the title line and, in indent
// mode, the same amount of leading spaces to every content line.
func (h *Headline) Demote(amount int, cascade bool) error {
	if amount < 1 {
		amount = 1
	}

	h.Level += amount
	h.Line = strings.Repeat("*", amount) + h.Line
	h.shiftCols(h.Range.StartLine, amount)
	h.doc.buf.SetLine(h.Range.StartLine, h.Line)

	if h.doc.Settings.IndentMode {
		pad := strings.Repeat(" ", amount)
		for _, c := range h.Content {
			c.Line = pad + c.Line
			c.Range.EndCol = len(c.Line)
			h.shiftCols(c.Range.StartLine, amount)
			h.doc.buf.SetLine(c.Range.StartLine, c.Line)
		}
	}

	if cascade {
		for _, child := range h.Headlines {
			if err := child.Demote(amount, true); err != nil {
				return err
			}
		}
	}
	return nil
}
