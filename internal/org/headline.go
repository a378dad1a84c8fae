package org

import (
	"strings"
)

// Properties is the property drawer state of a headline. At most one drawer
// per headline; a drawer opened at an invalid position never becomes valid.
type Properties struct {
	Valid      bool              `json:"valid"`
	Unfinished bool              `json:"-"`
	Range      Range             `json:"range"`
	Items      map[string]string `json:"items,omitempty"`
}

// Headline is one outline node. The document root is a synthetic level-0
// headline; real headlines start at level 1.
type Headline struct {
	ID       int    `json:"id"`
	Level    int    `json:"level"`
	Line     string `json:"line"`
	Title    string `json:"title"`
	Priority string `json:"priority,omitempty"`

	Todo TodoKeyword `json:"todo_keyword"`
	Tags []string    `json:"tags,omitempty"`

	Parent    *Headline   `json:"-"`
	Headlines []*Headline `json:"headlines,omitempty"`
	Content   []*Content  `json:"content,omitempty"`

	Properties Properties `json:"properties"`
	Dates      []*Date    `json:"dates,omitempty"`
	Range      Range      `json:"range"`
	Archived   bool       `json:"archived"`

	doc *Document
}

// NewHeadline classifies a title line into a headline node. Tags are seeded
// from the parent's inheritable tags before the line's own tag block is
// appended; duplicates are suppressed.
func NewHeadline(line string, lnum int, parent *Headline, settings Settings) *Headline {
	level := headlineLevel(line)
	h := &Headline{
		ID:     lnum,
		Level:  level,
		Line:   line,
		Parent: parent,
		Range:  Range{StartLine: lnum, StartCol: 1, EndLine: lnum, EndCol: len(line)},
		Tags:   settings.inheritableTags(parent),
	}

	rest := strings.TrimPrefix(line, strings.Repeat("*", level))

	// Todo keyword: first word after the markers, config order wins.
	trimmed := strings.TrimLeft(rest, " \t")
	for _, kw := range settings.TodoKeywordsAll {
		if trimmed == kw || strings.HasPrefix(trimmed, kw+" ") || strings.HasPrefix(trimmed, kw+"\t") {
			col := strings.Index(line, kw) + 1
			h.Todo = TodoKeyword{
				Value: kw,
				Type:  settings.keywordType(kw),
				Range: Range{StartLine: lnum, StartCol: col, EndLine: lnum, EndCol: col + len(kw) - 1},
			}
			trimmed = strings.TrimLeft(trimmed[len(kw):], " \t")
			break
		}
	}

	// Priority is only recognized directly after a matched todo keyword.
	if h.Todo.Value != "" {
		if m := priorityRe.FindStringSubmatch(trimmed); m != nil {
			h.Priority = m[1]
			trimmed = strings.TrimLeft(trimmed[len(m[0]):], " \t")
		}
	}

	tags, block := parseTags(trimmed)
	for _, t := range tags {
		h.addTag(t)
	}

	title := trimmed
	if block != "" {
		title = title[:strings.LastIndex(title, block)]
	}
	h.Title = strings.TrimSpace(title)

	// Timestamps embedded in the title stay in the text; they are extracted
	// as plain dates alongside.
	for _, d := range ParseAllFromLine(line, lnum) {
		h.Dates = append(h.Dates, d.CloneWithType(DateNone))
	}

	return h
}

func (h *Headline) addTag(tag string) {
	for _, t := range h.Tags {
		if t == tag {
			return
		}
	}
	h.Tags = append(h.Tags, tag)
}

// AddHeadline appends child to this headline's children. The caller picks
// the parent by level; ids stay monotonic because lines are consumed in
// document order.
func (h *Headline) AddHeadline(child *Headline) {
	h.Headlines = append(h.Headlines, child)
}

// AddContent routes one classified line into the headline: planning
// absorption (first content line only), plain date absorption, then drawer
// state transitions. Misplaced drawers stay inert generic content.
func (h *Headline) AddContent(c *Content) {
	if c.Type == ContentPlanning && len(h.Content) == 0 {
		for _, d := range c.Dates {
			h.Dates = append(h.Dates, d.Clone())
		}
	} else {
		if c.Type == ContentPlanning {
			// Planning keywords outside the first content slot degrade to
			// generic content with plain dates.
			c.Type = ContentGeneric
		}
		for _, d := range c.Dates {
			h.Dates = append(h.Dates, d.CloneWithType(DateNone))
		}
	}

	h.Content = append(h.Content, c)
	h.Range.EndLine = c.Range.EndLine

	switch {
	case isDrawerStart(c.Line):
		if h.Properties.Valid || h.Properties.Unfinished || !h.drawerPositionValid() {
			return // inert
		}
		c.Type = ContentDrawerStart
		h.Properties.Unfinished = true
		h.Properties.Range = Range{StartLine: c.Range.StartLine, StartCol: 1, EndLine: c.Range.EndLine, EndCol: len(c.Line)}

	case h.Properties.Unfinished && isDrawerEnd(c.Line):
		c.Type = ContentDrawerEnd
		h.Properties.Unfinished = false
		h.Properties.Valid = true
		h.Properties.Range.EndLine = c.Range.EndLine
		h.collectProperties()

	case h.Properties.Unfinished:
		if name, value, ok := parseDrawerItem(c.Line); ok {
			c.Type = ContentDrawerBody
			c.Drawer = map[string]string{name: value}
		}
	}
}

// drawerPositionValid reports whether the just-appended line sits at content
// position 1, or position 2 when position 1 is a planning line.
func (h *Headline) drawerPositionValid() bool {
	switch len(h.Content) {
	case 1:
		return true
	case 2:
		return h.Content[0].Type == ContentPlanning
	default:
		return false
	}
}

// collectProperties merges drawer body mappings inside the drawer range into
// the headline's items, later entries overwriting earlier ones.
func (h *Headline) collectProperties() {
	if h.Properties.Items == nil {
		h.Properties.Items = make(map[string]string)
	}
	for _, c := range h.Content {
		if c.Type != ContentDrawerBody || c.Drawer == nil {
			continue
		}
		if c.Range.StartLine <= h.Properties.Range.StartLine || c.Range.StartLine >= h.Properties.Range.EndLine {
			continue
		}
		for k, v := range c.Drawer {
			h.Properties.Items[k] = v
		}
	}
}

// SetRangeEnd seals the headline's span once its next-sibling or
// ancestor-exit boundary is known.
func (h *Headline) SetRangeEnd(lnum int) {
	h.Range.EndLine = lnum
}

// IsFirstHeadline reports whether this is the first child of its parent.
func (h *Headline) IsFirstHeadline() bool {
	return h.Parent != nil && len(h.Parent.Headlines) > 0 && h.Parent.Headlines[0].ID == h.ID
}

// IsLastHeadline reports whether this is the last child of its parent.
func (h *Headline) IsLastHeadline() bool {
	return h.Parent != nil && len(h.Parent.Headlines) > 0 && h.Parent.Headlines[len(h.Parent.Headlines)-1].ID == h.ID
}

// NextHeadlineSameLevel returns the nearest following sibling with the same
// level, or nil.
func (h *Headline) NextHeadlineSameLevel() *Headline {
	if h.Parent == nil {
		return nil
	}
	for _, sib := range h.Parent.Headlines {
		if sib.Level == h.Level && sib.ID > h.ID {
			return sib
		}
	}
	return nil
}

// PrevHeadlineSameLevel returns the nearest preceding sibling with the same
// level, or nil.
func (h *Headline) PrevHeadlineSameLevel() *Headline {
	if h.Parent == nil {
		return nil
	}
	var prev *Headline
	for _, sib := range h.Parent.Headlines {
		if sib.Level == h.Level && sib.ID < h.ID {
			prev = sib
		}
	}
	return prev
}

// GetProperty returns the drawer value for name. No ancestor inheritance.
func (h *Headline) GetProperty(name string) (string, bool) {
	v, ok := h.Properties.Items[name]
	return v, ok
}

// GetCategory returns the CATEGORY property, falling back to the document
// default.
func (h *Headline) GetCategory() string {
	if v, ok := h.GetProperty("CATEGORY"); ok && v != "" {
		return v
	}
	if h.doc != nil {
		return h.doc.Settings.DefaultCategory
	}
	return ""
}

// GetScheduledDate returns the first SCHEDULED date, or nil.
func (h *Headline) GetScheduledDate() *Date {
	return h.firstDate((*Date).IsScheduled)
}

// GetDeadlineDate returns the first DEADLINE date, or nil.
func (h *Headline) GetDeadlineDate() *Date {
	return h.firstDate((*Date).IsDeadline)
}

func (h *Headline) getClosedDate() *Date {
	return h.firstDate((*Date).IsClosed)
}

func (h *Headline) firstDate(pred func(*Date) bool) *Date {
	for _, d := range h.Dates {
		if pred(d) {
			return d
		}
	}
	return nil
}

// ValidDatesForAgenda filters dates to active, non-closed, non-obsolete
// entries. An active range start with a planning role additionally
// contributes a plain clone so generic day matching sees it too.
func (h *Headline) ValidDatesForAgenda() []*Date {
	var out []*Date
	for _, d := range h.Dates {
		if !d.Active || d.IsClosed() || d.IsObsoleteRangeEnd() {
			continue
		}
		out = append(out, d)
		if !d.IsNone() && d.IsDateRangeStart() {
			out = append(out, d.CloneWithType(DateNone))
		}
	}
	return out
}

// PriorityNumber maps the cosmetic priority onto the fixed three-bucket
// scale: highest 2000, lowest 0, everything else 1000.
func (h *Headline) PriorityNumber() int {
	if h.doc == nil || h.Priority == "" {
		return 1000
	}
	switch h.Priority {
	case h.doc.Settings.PriorityHighest:
		return 2000
	case h.doc.Settings.PriorityLowest:
		return 0
	default:
		return 1000
	}
}

// IsArchived reports whether the headline is explicitly flagged or carries
// an ARCHIVE tag (case-insensitive).
func (h *Headline) IsArchived() bool {
	if h.Archived {
		return true
	}
	for _, t := range h.Tags {
		if strings.EqualFold(t, "ARCHIVE") {
			return true
		}
	}
	return false
}

// IsDone reports whether the todo keyword is DONE-class.
func (h *Headline) IsDone() bool {
	return h.Todo.Type == TodoKeywordDone
}
