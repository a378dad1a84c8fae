package org

import (
	"regexp"
	"strings"
)

// ContentType is the classification of one non-headline line.
type ContentType int

// Content kinds. Any line that meets no positional or syntactic
// precondition falls through to ContentGeneric rather than erroring.
const (
	ContentGeneric ContentType = iota
	ContentPlanning
	ContentDrawerStart
	ContentDrawerBody
	ContentDrawerEnd
)

// Content is one classified non-headline line attached to a headline.
type Content struct {
	Type  ContentType `json:"type"`
	Line  string      `json:"line"`
	Range Range       `json:"range"`
	Dates []*Date     `json:"dates,omitempty"`
	// Drawer holds the parsed :NAME: value mapping for drawer body lines.
	Drawer map[string]string `json:"drawer,omitempty"`
}

var (
	headlineRe    = regexp.MustCompile(`^(\*+)(\s|$)`)
	tagBlockRe    = regexp.MustCompile(`(:[A-Za-z0-9_%@#:]+:)\s*$`)
	tagSegmentRe  = regexp.MustCompile(`^[A-Za-z0-9_%@#]+$`)
	priorityRe    = regexp.MustCompile(`^\[#([A-Za-z0-9])\]`)
	planningRe    = regexp.MustCompile(`\b(SCHEDULED|DEADLINE|CLOSED):\s*[<\[]`)
	planningKwRe  = regexp.MustCompile(`\b(SCHEDULED|DEADLINE|CLOSED):`)
	drawerStartRe = regexp.MustCompile(`(?i)^\s*:PROPERTIES:\s*$`)
	drawerEndRe   = regexp.MustCompile(`(?i)^\s*:END:\s*$`)
	drawerItemRe  = regexp.MustCompile(`^\s*:([^\s:]+):\s*(.*?)\s*$`)
)

// IsHeadline reports whether line opens a new headline: one or more outline
// markers followed by whitespace, or a bare marker run.
func IsHeadline(line string) bool {
	return headlineRe.MatchString(line)
}

// headlineLevel returns the outline depth of a title line, 0 if not one.
func headlineLevel(line string) int {
	m := headlineRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// parseTags extracts the trailing :tag:tag: block. Empty segments are
// dropped silently; an invalid character simply ends the block, so a
// malformed run degrades to its valid trailing portion or to no tags.
func parseTags(line string) (tags []string, block string) {
	m := tagBlockRe.FindStringSubmatch(line)
	if m == nil {
		return nil, ""
	}
	block = m[1]
	for _, seg := range strings.Split(strings.Trim(block, ":"), ":") {
		if seg == "" {
			continue
		}
		if !tagSegmentRe.MatchString(seg) {
			return nil, ""
		}
		tags = append(tags, seg)
	}
	return tags, block
}

// isPlanningLine reports whether line carries a reserved planning keyword
// with an attached timestamp. Position (first content line) is enforced by
// the tree builder, not here.
func isPlanningLine(line string) bool {
	return planningRe.MatchString(line)
}

// tagPlanningDates assigns each date the role of the nearest planning
// keyword preceding it on the line. Dates before any keyword stay plain.
// Closed dates are forced inactive.
func tagPlanningDates(line string, dates []*Date) {
	kws := planningKwRe.FindAllStringSubmatchIndex(line, -1)
	for _, d := range dates {
		start := d.Range.StartCol - 1
		for _, kw := range kws {
			if kw[1] > start {
				break
			}
			switch line[kw[2]:kw[3]] {
			case "SCHEDULED":
				d.Type = DateScheduled
			case "DEADLINE":
				d.Type = DateDeadline
			case "CLOSED":
				d.Type = DateClosed
				d.Active = false
			}
		}
	}
}

// parseDrawerItem parses a ":NAME: value" drawer body line.
func parseDrawerItem(line string) (name, value string, ok bool) {
	m := drawerItemRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func isDrawerStart(line string) bool { return drawerStartRe.MatchString(line) }
func isDrawerEnd(line string) bool   { return drawerEndRe.MatchString(line) }

// leadingWhitespace returns the run of spaces and tabs opening line.
func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
