package org

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateType is the semantic role of a timestamp on a headline.
type DateType int

// Timestamp roles. A plain timestamp embedded in a title or body line is
// DateNone; planning-line timestamps carry the role of their keyword.
const (
	DateNone DateType = iota
	DateScheduled
	DateDeadline
	DateClosed
)

// String returns the planning keyword for the role, or "NONE".
func (t DateType) String() string {
	switch t {
	case DateScheduled:
		return "SCHEDULED"
	case DateDeadline:
		return "DEADLINE"
	case DateClosed:
		return "CLOSED"
	default:
		return "NONE"
	}
}

// Range is a source span in the underlying buffer. Lines and columns are
// 1-based; EndCol is inclusive.
type Range struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

var (
	// <2024-01-01 Mon 10:30-11:00 +1w -2d> or the [..] inactive variant.
	timestampRe = regexp.MustCompile(`[<\[](\d{4})-(\d{2})-(\d{2})([^>\]]*)[>\]]`)
	timePartRe  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	repeaterRe  = regexp.MustCompile(`[.+]?\+\d+[hdwmy]`)
	weekdayRe   = regexp.MustCompile(`\b([A-Za-z]{2,3})\b`)
)

// Date is one timestamp occurrence. It keeps the source range of its full
// bracketed text so mutations can splice the date portion in place.
type Date struct {
	Year    int  `json:"year"`
	Month   int  `json:"month"`
	Day     int  `json:"day"`
	Hour    int  `json:"hour,omitempty"`
	Minute  int  `json:"minute,omitempty"`
	HasTime bool `json:"has_time,omitempty"`

	Type     DateType `json:"type"`
	Active   bool     `json:"active"`
	Repeater string   `json:"repeater,omitempty"`
	Weekday  string   `json:"weekday,omitempty"`

	// Range semantics for <start>--<end> timestamps.
	RangeStart       bool `json:"range_start,omitempty"`
	RangeEnd         bool `json:"range_end,omitempty"`
	ObsoleteRangeEnd bool `json:"-"`

	Range Range `json:"range"`
}

// NewDate builds a plain active date from a time value.
func NewDate(t time.Time) *Date {
	return &Date{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Weekday: t.Weekday().String()[:3],
		Active:  true,
	}
}

// ParseDate parses a bare "YYYY-MM-DD" string into a plain active date.
func ParseDate(s string) (*Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("org: parse date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// ParseAllFromLine extracts every timestamp in line, in order of appearance.
// lnum is the 1-based buffer line number recorded into each source range.
// Two adjacent timestamps joined by "--" form a date range; a range end that
// repeats the start's calendar day is marked obsolete.
func ParseAllFromLine(line string, lnum int) []*Date {
	locs := timestampRe.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	dates := make([]*Date, 0, len(locs))
	for _, loc := range locs {
		raw := line[loc[0]:loc[1]]
		d := parseTimestamp(raw)
		d.Range = Range{
			StartLine: lnum,
			StartCol:  loc[0] + 1,
			EndLine:   lnum,
			EndCol:    loc[1],
		}
		dates = append(dates, d)
	}
	// Link "--" joined pairs into ranges.
	for i := 0; i < len(dates)-1; i++ {
		gap := line[dates[i].Range.EndCol : dates[i+1].Range.StartCol-1]
		if gap == "--" {
			dates[i].RangeStart = true
			dates[i+1].RangeEnd = true
			if sameDay(dates[i], dates[i+1]) {
				dates[i+1].ObsoleteRangeEnd = true
			}
		}
	}
	return dates
}

func parseTimestamp(raw string) *Date {
	m := timestampRe.FindStringSubmatch(raw)
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	rest := m[4]

	d := &Date{
		Year:   year,
		Month:  month,
		Day:    day,
		Active: strings.HasPrefix(raw, "<"),
	}
	if wd := weekdayRe.FindString(rest); wd != "" {
		d.Weekday = wd
	}
	if tm := timePartRe.FindStringSubmatch(rest); tm != nil {
		d.Hour, _ = strconv.Atoi(tm[1])
		d.Minute, _ = strconv.Atoi(tm[2])
		d.HasTime = true
	}
	if rep := repeaterRe.FindString(rest); rep != "" {
		d.Repeater = rep
	}
	return d
}

func sameDay(a, b *Date) bool {
	return a.Year == b.Year && a.Month == b.Month && a.Day == b.Day
}

// Clone returns an independent copy of the date.
func (d *Date) Clone() *Date {
	c := *d
	return &c
}

// CloneWithType returns a copy of the date re-tagged with the given role.
// A closed role is never active.
func (d *Date) CloneWithType(t DateType) *Date {
	c := d.Clone()
	c.Type = t
	if t == DateClosed {
		c.Active = false
	}
	return c
}

// Set replaces the calendar-day components, leaving time of day, repeater
// and activity untouched.
func (d *Date) Set(year, month, day int) {
	d.Year = year
	d.Month = month
	d.Day = day
	if t := d.timeValue(); !t.IsZero() {
		d.Weekday = t.Weekday().String()[:3]
	}
}

func (d *Date) timeValue() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, 0, 0, time.Local)
}

// IsScheduled reports whether the date carries the SCHEDULED role.
func (d *Date) IsScheduled() bool { return d.Type == DateScheduled }

// IsDeadline reports whether the date carries the DEADLINE role.
func (d *Date) IsDeadline() bool { return d.Type == DateDeadline }

// IsClosed reports whether the date carries the CLOSED role.
func (d *Date) IsClosed() bool { return d.Type == DateClosed }

// IsNone reports whether the date is a plain occurrence.
func (d *Date) IsNone() bool { return d.Type == DateNone }

// IsActive reports whether the timestamp participates in schedule views.
func (d *Date) IsActive() bool { return d.Active && d.Type != DateClosed }

// IsDateRangeStart reports whether this is the first half of a "--" range.
func (d *Date) IsDateRangeStart() bool { return d.RangeStart }

// IsObsoleteRangeEnd reports whether this is a range end on the same
// calendar day as its start, which agenda views skip.
func (d *Date) IsObsoleteRangeEnd() bool { return d.ObsoleteRangeEnd }

// DayString returns the bare "YYYY-MM-DD" form.
func (d *Date) DayString() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// String renders the timestamp interior without brackets.
func (d *Date) String() string {
	var b strings.Builder
	b.WriteString(d.DayString())
	if d.Weekday != "" {
		b.WriteString(" " + d.Weekday)
	}
	if d.HasTime {
		fmt.Fprintf(&b, " %02d:%02d", d.Hour, d.Minute)
	}
	if d.Repeater != "" {
		b.WriteString(" " + d.Repeater)
	}
	return b.String()
}

// ToWrappedString renders the timestamp with active <..> or inactive [..]
// delimiters.
func (d *Date) ToWrappedString(active bool) string {
	if active {
		return "<" + d.String() + ">"
	}
	return "[" + d.String() + "]"
}
