package org

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

func TestAddProperties_CreatesDrawer(t *testing.T) {
	doc := parseLines(t, "* Task\nbody\n")
	h := doc.Root.Headlines[0]

	created, indent, err := h.AddProperties(map[string]string{"CATEGORY": "inbox"})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("expected a new drawer")
	}
	if indent != "  " {
		t.Errorf("indent = %q, want two spaces at level 1", indent)
	}

	want := "* Task\n  :PROPERTIES:\n  :CATEGORY: inbox\n  :END:\nbody\n"
	if doc.String() != want {
		t.Errorf("document = %q, want %q", doc.String(), want)
	}
	if v, _ := h.GetProperty("CATEGORY"); v != "inbox" {
		t.Errorf("CATEGORY = %q, want inbox", v)
	}
	if !h.Properties.Valid {
		t.Error("drawer should be valid after creation")
	}
}

func TestAddProperties_AfterPlanningLine(t *testing.T) {
	doc := parseLines(t, "* Task\n  SCHEDULED: <2024-01-01 Mon>\n")
	h := doc.Root.Headlines[0]

	if _, _, err := h.AddProperties(map[string]string{"ID": "abc"}); err != nil {
		t.Fatal(err)
	}
	lines := doc.Lines()
	if lines[1] != "  SCHEDULED: <2024-01-01 Mon>" {
		t.Errorf("planning line moved: %q", lines[1])
	}
	if lines[2] != "  :PROPERTIES:" {
		t.Errorf("drawer not directly after planning line: %q", lines[2])
	}
}

func TestAddProperties_Idempotent(t *testing.T) {
	doc := parseLines(t, "* Task\n")
	h := doc.Root.Headlines[0]

	for i := 0; i < 2; i++ {
		if _, _, err := h.AddProperties(map[string]string{"K": "V"}); err != nil {
			t.Fatal(err)
		}
	}

	count := 0
	for _, line := range doc.Lines() {
		if strings.Contains(line, ":K: V") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("found %d ':K: V' lines, want exactly 1\n%s", count, doc.String())
	}
	if got := len(doc.Lines()); got != 4 {
		t.Errorf("line count = %d, want 4 (no duplicated drawer)", got)
	}
}

func TestAddProperties_UpdatesExistingValueInPlace(t *testing.T) {
	doc := parseLines(t, "* Task\n  :PROPERTIES:\n  :STATUS: draft\n  :END:\n")
	h := doc.Root.Headlines[0]

	created, _, err := h.AddProperties(map[string]string{"STATUS": "final"})
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("existing drawer should be reused")
	}
	if doc.Lines()[2] != "  :STATUS: final" {
		t.Errorf("line = %q, want value replaced in place", doc.Lines()[2])
	}
	if v, _ := h.GetProperty("STATUS"); v != "final" {
		t.Errorf("STATUS = %q, want final", v)
	}
}

func TestAddProperties_AppendsNewKeyAfterDrawerStart(t *testing.T) {
	doc := parseLines(t, "* Task\n  :PROPERTIES:\n  :A: 1\n  :END:\n")
	h := doc.Root.Headlines[0]

	if _, _, err := h.AddProperties(map[string]string{"B": "2"}); err != nil {
		t.Fatal(err)
	}
	lines := doc.Lines()
	if lines[2] != "  :B: 2" {
		t.Errorf("new key line = %q, want right after drawer start", lines[2])
	}
	if lines[4] != "  :END:" {
		t.Errorf("drawer end = %q, want :END: shifted down", lines[4])
	}
	if h.Properties.Range.EndLine != 5 {
		t.Errorf("drawer range end = %d, want 5", h.Properties.Range.EndLine)
	}
}

func TestAddScheduledDate_InsertsPlanningLine(t *testing.T) {
	doc := parseLines(t, "* Task\nbody\n")
	h := doc.Root.Headlines[0]

	d, _ := ParseDate("2024-01-01")
	if err := h.AddScheduledDate(d); err != nil {
		t.Fatal(err)
	}
	want := "* Task\n  SCHEDULED: <2024-01-01 Mon>\nbody\n"
	if doc.String() != want {
		t.Errorf("document = %q, want %q", doc.String(), want)
	}
	sc := h.GetScheduledDate()
	if sc == nil || sc.Day != 1 || !sc.Active {
		t.Fatalf("scheduled = %+v", sc)
	}
}

func TestAddScheduledDate_SplicesExistingDate(t *testing.T) {
	doc := parseLines(t, "* Task\n  SCHEDULED: <2024-01-01 Mon 10:30 +1w>\n")
	h := doc.Root.Headlines[0]

	d, _ := ParseDate("2024-02-15")
	if err := h.AddScheduledDate(d); err != nil {
		t.Fatal(err)
	}
	// Only the calendar day is rewritten; time and repeater survive.
	if got := doc.Lines()[1]; got != "  SCHEDULED: <2024-02-15 Mon 10:30 +1w>" {
		t.Errorf("line = %q", got)
	}
	sc := h.GetScheduledDate()
	if sc.Month != 2 || sc.Day != 15 {
		t.Errorf("model date = %+v, want 2024-02-15", sc)
	}
}

func TestAddDeadlineDate_AppendsToPlanningLine(t *testing.T) {
	doc := parseLines(t, "* Task\n  SCHEDULED: <2024-01-01 Mon>\n")
	h := doc.Root.Headlines[0]

	d, _ := ParseDate("2024-03-01")
	if err := h.AddDeadlineDate(d); err != nil {
		t.Fatal(err)
	}
	want := "  SCHEDULED: <2024-01-01 Mon> DEADLINE: <2024-03-01 Fri>"
	if got := doc.Lines()[1]; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
	if h.GetDeadlineDate() == nil {
		t.Fatal("deadline missing from model")
	}

	// The appended date can itself be spliced later.
	d2, _ := ParseDate("2024-04-01")
	if err := h.AddDeadlineDate(d2); err != nil {
		t.Fatal(err)
	}
	want = "  SCHEDULED: <2024-01-01 Mon> DEADLINE: <2024-04-01 Fri>"
	if got := doc.Lines()[1]; got != want {
		t.Errorf("after splice line = %q, want %q", got, want)
	}
}

func TestAddClosedDate(t *testing.T) {
	doc := parseLines(t, "* DONE Task\n")
	doc.Now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	h := doc.Root.Headlines[0]

	if err := h.AddClosedDate(); err != nil {
		t.Fatal(err)
	}
	want := "* DONE Task\n  CLOSED: [2024-05-10 Fri]\n"
	if doc.String() != want {
		t.Errorf("document = %q, want %q", doc.String(), want)
	}

	// Second call is a no-op.
	if err := h.AddClosedDate(); err != nil {
		t.Fatal(err)
	}
	if doc.String() != want {
		t.Errorf("second AddClosedDate changed the document: %q", doc.String())
	}
}

func TestRemoveClosedDate_DeletesBlankLine(t *testing.T) {
	doc := parseLines(t, "* DONE Task\n  CLOSED: [2024-05-10 Fri]\nbody\n")
	h := doc.Root.Headlines[0]

	if err := h.RemoveClosedDate(); err != nil {
		t.Fatal(err)
	}
	want := "* DONE Task\nbody\n"
	if doc.String() != want {
		t.Errorf("document = %q, want %q", doc.String(), want)
	}
	if h.getClosedDate() != nil {
		t.Error("closed date still in model")
	}
	if h.Range.EndLine != 2 {
		t.Errorf("range end = %d, want 2 after line delete", h.Range.EndLine)
	}
}

func TestRemoveClosedDate_KeepsNonBlankPlanningLine(t *testing.T) {
	doc := parseLines(t, "* DONE Task\n  SCHEDULED: <2024-05-01 Wed> CLOSED: [2024-05-10 Fri]\n")
	h := doc.Root.Headlines[0]

	if err := h.RemoveClosedDate(); err != nil {
		t.Fatal(err)
	}
	if got := doc.Lines()[1]; got != "  SCHEDULED: <2024-05-01 Wed>" {
		t.Errorf("line = %q, want scheduled part kept", got)
	}
	if h.GetScheduledDate() == nil {
		t.Error("scheduled date lost")
	}
}

func TestRemoveClosedDate_ThenReschedule(t *testing.T) {
	doc := parseLines(t, "* DONE Task\n  CLOSED: [2024-05-10 Fri] SCHEDULED: <2024-06-01 Sat>\n")
	h := doc.Root.Headlines[0]

	if err := h.RemoveClosedDate(); err != nil {
		t.Fatal(err)
	}
	if got := doc.Lines()[1]; got != " SCHEDULED: <2024-06-01 Sat>" {
		t.Fatalf("line = %q, want scheduled part kept", got)
	}

	// The surviving date's stored offsets must follow the removed fragment,
	// so a later splice lands on the date digits.
	d, _ := ParseDate("2024-07-01")
	if err := h.AddScheduledDate(d); err != nil {
		t.Fatalf("reschedule after reopen: %v", err)
	}
	if got := doc.Lines()[1]; got != " SCHEDULED: <2024-07-01 Sat>" {
		t.Errorf("line = %q, want day spliced to 2024-07-01", got)
	}
	sc := h.GetScheduledDate()
	if sc == nil || sc.Month != 7 || sc.Day != 1 {
		t.Errorf("model date = %+v, want 2024-07-01", sc)
	}
}

func TestPromote_TopLevelRejected(t *testing.T) {
	doc := parseLines(t, "* Task\n")
	err := doc.Root.Headlines[0].Promote(1, false)
	if !errors.Is(err, apperr.ErrTopLevel) {
		t.Fatalf("err = %v, want ErrTopLevel", err)
	}
	if doc.Lines()[0] != "* Task" {
		t.Error("rejected promote must not modify the buffer")
	}
}

func TestPromoteThenDemoteRestoresBytes(t *testing.T) {
	text := "* Top\n** Child\n   indented body\n  :PROPERTIES:\n  :X: 1\n  :END:\n"
	doc := parseLines(t, text)
	child := doc.Root.Headlines[0].Headlines[0]

	if err := child.Promote(1, false); err != nil {
		t.Fatal(err)
	}
	if err := child.Demote(1, false); err != nil {
		t.Fatal(err)
	}
	if doc.String() != text {
		t.Errorf("document = %q, want original %q", doc.String(), text)
	}
}

func TestPromote_UnderIndentedLinesUntouched(t *testing.T) {
	doc := parseLines(t, "*** Child\nflush left\n    indented\n")
	child := doc.Root.Headlines[0]

	if err := child.Promote(2, false); err != nil {
		t.Fatal(err)
	}
	lines := doc.Lines()
	if lines[0] != "* Child" {
		t.Errorf("title = %q, want two markers removed", lines[0])
	}
	if lines[1] != "flush left" {
		t.Errorf("flush-left line = %q, want untouched", lines[1])
	}
	if lines[2] != "  indented" {
		t.Errorf("indented line = %q, want two blanks stripped", lines[2])
	}
}

func TestDemote_Cascade(t *testing.T) {
	doc := parseLines(t, "* Top\n** Child\n*** Grand\n")
	top := doc.Root.Headlines[0]

	if err := top.Demote(1, true); err != nil {
		t.Fatal(err)
	}
	lines := doc.Lines()
	if lines[0] != "** Top" || lines[1] != "*** Child" || lines[2] != "**** Grand" {
		t.Errorf("lines = %v", lines)
	}
	if top.Level != 2 || top.Headlines[0].Level != 3 || top.Headlines[0].Headlines[0].Level != 4 {
		t.Error("levels not cascaded in model")
	}
}

func TestAddScheduledDate_ExtendsAncestorRanges(t *testing.T) {
	doc := parseLines(t, "* Top\n** Child\n")
	child := doc.Root.Headlines[0].Headlines[0]

	d, _ := ParseDate("2024-07-01")
	if err := child.AddScheduledDate(d); err != nil {
		t.Fatal(err)
	}
	if child.Range.EndLine != 3 {
		t.Errorf("child range end = %d, want 3", child.Range.EndLine)
	}
	// The parent and root spans must widen with the child.
	if top := doc.Root.Headlines[0]; top.Range.EndLine != 3 {
		t.Errorf("parent range end = %d, want 3", top.Range.EndLine)
	}
	if doc.Root.Range.EndLine != 3 {
		t.Errorf("root range end = %d, want 3", doc.Root.Range.EndLine)
	}
	if h := doc.HeadlineAt(3); h != child {
		t.Errorf("HeadlineAt(3) = %v, want the child headline", h)
	}
}

func TestMutationKeepsSubsequentRangesCoherent(t *testing.T) {
	doc := parseLines(t, "* First\n* Second\nbody\n")
	first := doc.Root.Headlines[0]
	second := doc.Root.Headlines[1]

	d, _ := ParseDate("2024-01-01")
	if err := first.AddScheduledDate(d); err != nil {
		t.Fatal(err)
	}
	if second.Range.StartLine != 3 || second.Range.EndLine != 4 {
		t.Errorf("second range = %+v, want shifted to 3..4", second.Range)
	}
	if first.Range.EndLine != 2 {
		t.Errorf("first range end = %d, want 2", first.Range.EndLine)
	}
	// The shifted headline can still be located by line.
	if h := doc.HeadlineAt(4); h != second {
		t.Errorf("HeadlineAt(4) = %v, want Second", h)
	}
}
