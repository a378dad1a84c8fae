package org

import (
	"testing"
	"time"
)

func TestParseAllFromLine_Fields(t *testing.T) {
	dates := ParseAllFromLine("  SCHEDULED: <2024-01-15 Mon 10:30 +1w>", 3)
	if len(dates) != 1 {
		t.Fatalf("len(dates) = %d, want 1", len(dates))
	}
	d := dates[0]
	if d.Year != 2024 || d.Month != 1 || d.Day != 15 {
		t.Errorf("date = %d-%d-%d, want 2024-1-15", d.Year, d.Month, d.Day)
	}
	if !d.HasTime || d.Hour != 10 || d.Minute != 30 {
		t.Errorf("time = %d:%d (has=%v), want 10:30", d.Hour, d.Minute, d.HasTime)
	}
	if d.Repeater != "+1w" {
		t.Errorf("repeater = %q, want +1w", d.Repeater)
	}
	if d.Weekday != "Mon" {
		t.Errorf("weekday = %q, want Mon", d.Weekday)
	}
	if !d.Active {
		t.Error("angle-bracket timestamp should be active")
	}
	if d.Range.StartLine != 3 || d.Range.StartCol != 14 {
		t.Errorf("range = %+v, want line 3 col 14", d.Range)
	}
}

func TestParseAllFromLine_InactiveAndMultiple(t *testing.T) {
	dates := ParseAllFromLine("logged [2024-02-01 Thu] and planned <2024-02-05 Mon>", 1)
	if len(dates) != 2 {
		t.Fatalf("len(dates) = %d, want 2", len(dates))
	}
	if dates[0].Active {
		t.Error("square-bracket timestamp should be inactive")
	}
	if !dates[1].Active {
		t.Error("angle-bracket timestamp should be active")
	}
}

func TestParseAllFromLine_DateRange(t *testing.T) {
	dates := ParseAllFromLine("<2024-03-01 Fri>--<2024-03-03 Sun>", 1)
	if len(dates) != 2 {
		t.Fatalf("len(dates) = %d, want 2", len(dates))
	}
	if !dates[0].IsDateRangeStart() || dates[0].IsObsoleteRangeEnd() {
		t.Errorf("dates[0] = %+v, want range start", dates[0])
	}
	if !dates[1].RangeEnd || dates[1].IsObsoleteRangeEnd() {
		t.Errorf("dates[1] = %+v, want non-obsolete range end", dates[1])
	}

	same := ParseAllFromLine("<2024-03-01 Fri 09:00>--<2024-03-01 Fri 17:00>", 1)
	if !same[1].IsObsoleteRangeEnd() {
		t.Error("same-day range end should be obsolete")
	}
}

func TestParseAllFromLine_AdjacentWithoutDashes(t *testing.T) {
	dates := ParseAllFromLine("<2024-03-01 Fri> <2024-03-03 Sun>", 1)
	if dates[0].IsDateRangeStart() || dates[1].RangeEnd {
		t.Error("timestamps without -- should not form a range")
	}
}

func TestDateWrappedString(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.ToWrappedString(true); got != "<2024-01-01 Mon>" {
		t.Errorf("active = %q, want <2024-01-01 Mon>", got)
	}
	if got := d.ToWrappedString(false); got != "[2024-01-01 Mon]" {
		t.Errorf("inactive = %q, want [2024-01-01 Mon]", got)
	}
}

func TestDateCloneWithType(t *testing.T) {
	d := NewDate(time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC))
	c := d.CloneWithType(DateClosed)
	if c.Active {
		t.Error("closed clone must be inactive")
	}
	if !d.Active {
		t.Error("clone mutated the original")
	}
	if !d.IsActive() || c.IsActive() {
		t.Errorf("IsActive original/clone = %v/%v, want true/false", d.IsActive(), c.IsActive())
	}
}

func TestDateSetUpdatesWeekday(t *testing.T) {
	d, _ := ParseDate("2024-01-01") // Monday
	d.Set(2024, 1, 2)
	if d.Weekday != "Tue" {
		t.Errorf("weekday = %q, want Tue after Set", d.Weekday)
	}
}
