package org

import (
	"strings"
	"testing"
)

func parseLines(t *testing.T, text string) *Document {
	t.Helper()
	return ParseString(text, DefaultSettings())
}

func TestParse_HeadlineLevelsAndIDs(t *testing.T) {
	doc := parseLines(t, "* One\n** Two\nbody\n*** Three\n* Four\n")

	all := doc.AllHeadlines()
	if len(all) != 4 {
		t.Fatalf("len(headlines) = %d, want 4", len(all))
	}
	wantLevels := []int{1, 2, 3, 1}
	wantIDs := []int{1, 2, 4, 5}
	for i, h := range all {
		if h.Level != wantLevels[i] {
			t.Errorf("headline %d level = %d, want %d", i, h.Level, wantLevels[i])
		}
		if h.ID != wantIDs[i] {
			t.Errorf("headline %d id = %d, want %d", i, h.ID, wantIDs[i])
		}
	}
	// Pre-order ids strictly increase and match source line numbers.
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Errorf("ids not strictly increasing: %d after %d", all[i].ID, all[i-1].ID)
		}
	}
}

func TestParse_RangeSealing(t *testing.T) {
	doc := parseLines(t, "* One\nbody one\n** Two\nbody two\n* Three\n")

	one := doc.Root.Headlines[0]
	if one.Range.StartLine != 1 || one.Range.EndLine != 4 {
		t.Errorf("one range = %+v, want 1..4", one.Range)
	}
	two := one.Headlines[0]
	if two.Range.StartLine != 3 || two.Range.EndLine != 4 {
		t.Errorf("two range = %+v, want 3..4", two.Range)
	}
	three := doc.Root.Headlines[1]
	if three.Range.StartLine != 5 || three.Range.EndLine != 5 {
		t.Errorf("three range = %+v, want 5..5", three.Range)
	}
}

func TestParse_TitleLineScenario(t *testing.T) {
	doc := parseLines(t, "* TODO [#A] Write paper :work:urgent:\n")
	h := doc.Root.Headlines[0]

	if h.Todo.Value != "TODO" || h.Todo.Type != TodoKeywordTodo {
		t.Errorf("todo = %+v, want TODO/TODO", h.Todo)
	}
	if h.Priority != "A" {
		t.Errorf("priority = %q, want A", h.Priority)
	}
	if len(h.Tags) != 2 || h.Tags[0] != "work" || h.Tags[1] != "urgent" {
		t.Errorf("tags = %v, want [work urgent]", h.Tags)
	}
	if h.Title != "Write paper" {
		t.Errorf("title = %q, want %q", h.Title, "Write paper")
	}
}

func TestParse_TitleRoundTrip(t *testing.T) {
	line := "** DONE [#B] Ship release :release:ops:"
	doc := parseLines(t, line+"\n")
	h := doc.Root.Headlines[0]

	rebuilt := strings.Repeat("*", h.Level) + " " + h.Todo.Value +
		" [#" + h.Priority + "] " + h.Title + " :" + strings.Join(h.Tags, ":") + ":"
	redoc := parseLines(t, rebuilt+"\n")
	rh := redoc.Root.Headlines[0]

	if rh.Todo.Value != h.Todo.Value || rh.Priority != h.Priority || rh.Title != h.Title {
		t.Errorf("round trip mismatch: %+v vs %+v", rh, h)
	}
	if strings.Join(rh.Tags, ",") != strings.Join(h.Tags, ",") {
		t.Errorf("tags round trip = %v, want %v", rh.Tags, h.Tags)
	}
}

func TestParse_TodoKeywordPrecedence(t *testing.T) {
	settings := DefaultSettings()
	settings.TodoKeywordsAll = []string{"TODO", "TODOING", "DONE"}

	doc := ParseString("* TODOING longer keyword wins as a whole word\n", settings)
	h := doc.Root.Headlines[0]
	if h.Todo.Value != "TODOING" {
		t.Errorf("todo = %q, want TODOING", h.Todo.Value)
	}

	// Keyword only matches as the first word after the markers.
	doc = ParseString("* Review TODO items\n", settings)
	if doc.Root.Headlines[0].Todo.Value != "" {
		t.Errorf("mid-title keyword matched: %+v", doc.Root.Headlines[0].Todo)
	}
}

func TestParse_PriorityRequiresTodoKeyword(t *testing.T) {
	doc := parseLines(t, "* [#A] No keyword here\n")
	h := doc.Root.Headlines[0]
	if h.Priority != "" {
		t.Errorf("priority = %q, want empty without todo keyword", h.Priority)
	}
}

func TestParse_MalformedTagsDegradeSilently(t *testing.T) {
	// A space ends the block: only the valid trailing portion survives.
	doc := parseLines(t, "* Task :with space:bad:\n")
	h := doc.Root.Headlines[0]
	if len(h.Tags) != 1 || h.Tags[0] != "bad" {
		t.Errorf("tags = %v, want [bad]", h.Tags)
	}

	doc = parseLines(t, "* Task :no trailing colon\n")
	if len(doc.Root.Headlines[0].Tags) != 0 {
		t.Errorf("tags = %v, want none without a closing colon", doc.Root.Headlines[0].Tags)
	}

	doc = parseLines(t, "* Task :a::b:\n")
	h = doc.Root.Headlines[0]
	if len(h.Tags) != 2 || h.Tags[0] != "a" || h.Tags[1] != "b" {
		t.Errorf("tags = %v, want [a b] with empty segment dropped", h.Tags)
	}
}

func TestParse_TagInheritance(t *testing.T) {
	doc := parseLines(t, "* Parent :work:\n** Child :urgent:work:\n*** Grandchild\n")

	child := doc.Root.Headlines[0].Headlines[0]
	if len(child.Tags) != 2 || child.Tags[0] != "work" || child.Tags[1] != "urgent" {
		t.Errorf("child tags = %v, want [work urgent]", child.Tags)
	}
	grand := child.Headlines[0]
	if len(grand.Tags) != 2 {
		t.Errorf("grandchild tags = %v, want inherited [work urgent]", grand.Tags)
	}

	// Inheritance is a copy, not a live reference.
	child.Tags[0] = "mutated"
	if doc.Root.Headlines[0].Tags[0] != "work" {
		t.Errorf("parent tags mutated through child")
	}
}

func TestParse_PlanningLineFirstContentOnly(t *testing.T) {
	doc := parseLines(t, "* Task\n  SCHEDULED: <2024-01-01 Mon>\n")
	h := doc.Root.Headlines[0]
	if h.Content[0].Type != ContentPlanning {
		t.Fatalf("first content type = %v, want planning", h.Content[0].Type)
	}
	d := h.GetScheduledDate()
	if d == nil {
		t.Fatal("scheduled date missing")
	}
	if d.Year != 2024 || d.Month != 1 || d.Day != 1 || !d.Active {
		t.Errorf("date = %+v, want active 2024-01-01", d)
	}

	// The same line later in the content is not planning.
	doc = parseLines(t, "* Task\nnotes first\n  SCHEDULED: <2024-01-01 Mon>\n")
	h = doc.Root.Headlines[0]
	if h.GetScheduledDate() != nil {
		t.Errorf("misplaced planning line produced a scheduled date")
	}
	// Its timestamp still contributes a plain date.
	if len(h.Dates) != 1 || !h.Dates[0].IsNone() {
		t.Errorf("dates = %+v, want one plain date", h.Dates)
	}
}

func TestParse_TitleDatesStayPlain(t *testing.T) {
	doc := parseLines(t, "* Call Bob <2024-05-10 Fri>\n")
	h := doc.Root.Headlines[0]
	if len(h.Dates) != 1 || !h.Dates[0].IsNone() {
		t.Fatalf("dates = %+v, want one NONE date", h.Dates)
	}
	if !strings.Contains(h.Title, "<2024-05-10") {
		t.Errorf("title = %q, timestamp should stay in title text", h.Title)
	}
}

func TestParse_PropertyDrawer(t *testing.T) {
	doc := parseLines(t, "* Task\n  :PROPERTIES:\n  :CATEGORY: inbox\n  :CUSTOM_ID: x1\n  :END:\n")
	h := doc.Root.Headlines[0]

	if !h.Properties.Valid {
		t.Fatal("properties not valid")
	}
	if v, _ := h.GetProperty("CATEGORY"); v != "inbox" {
		t.Errorf("CATEGORY = %q, want inbox", v)
	}
	if v, _ := h.GetProperty("CUSTOM_ID"); v != "x1" {
		t.Errorf("CUSTOM_ID = %q, want x1", v)
	}
	if h.Properties.Range.StartLine != 2 || h.Properties.Range.EndLine != 5 {
		t.Errorf("drawer range = %+v, want 2..5", h.Properties.Range)
	}
}

func TestParse_PropertyDrawerAfterPlanning(t *testing.T) {
	doc := parseLines(t, "* Task\n  SCHEDULED: <2024-01-01 Mon>\n  :PROPERTIES:\n  :CATEGORY: inbox\n  :END:\n")
	h := doc.Root.Headlines[0]
	if !h.Properties.Valid {
		t.Fatal("drawer after planning line should be valid")
	}
}

func TestParse_MisplacedDrawerIsInert(t *testing.T) {
	doc := parseLines(t, "* Task\nsome text\n  :PROPERTIES:\n  :X: 1\n  :END:\n")
	h := doc.Root.Headlines[0]
	if h.Properties.Valid {
		t.Fatal("misplaced drawer should not be valid")
	}
	if _, ok := h.GetProperty("X"); ok {
		t.Error("misplaced drawer contributed properties")
	}
	for _, c := range h.Content {
		if c.Type != ContentGeneric {
			t.Errorf("misplaced drawer line classified as %v, want generic", c.Type)
		}
	}
}

func TestParse_UnfinishedDrawerStaysInvalid(t *testing.T) {
	doc := parseLines(t, "* Task\n  :PROPERTIES:\n  :X: 1\n")
	h := doc.Root.Headlines[0]
	if h.Properties.Valid {
		t.Error("unterminated drawer should not be valid")
	}
	if !h.Properties.Unfinished {
		t.Error("unterminated drawer should stay unfinished")
	}
}

func TestParse_GetCategoryDefault(t *testing.T) {
	settings := DefaultSettings()
	settings.DefaultCategory = "journal"

	doc := ParseString("* Plain\n* With drawer\n  :PROPERTIES:\n  :CATEGORY: inbox\n  :END:\n", settings)
	if got := doc.Root.Headlines[0].GetCategory(); got != "journal" {
		t.Errorf("default category = %q, want journal", got)
	}
	if got := doc.Root.Headlines[1].GetCategory(); got != "inbox" {
		t.Errorf("drawer category = %q, want inbox", got)
	}
}

func TestParse_PreambleBelongsToRoot(t *testing.T) {
	doc := parseLines(t, "#+TITLE: notes\n\n* First\n")
	if len(doc.Root.Content) != 2 {
		t.Errorf("root content = %d lines, want 2", len(doc.Root.Content))
	}
	if doc.Root.Headlines[0].Range.StartLine != 3 {
		t.Errorf("first headline start = %d, want 3", doc.Root.Headlines[0].Range.StartLine)
	}
}

func TestHeadlineAt(t *testing.T) {
	doc := parseLines(t, "* One\nbody\n** Two\nmore\n* Three\n")
	if h := doc.HeadlineAt(4); h == nil || h.Title != "Two" {
		t.Errorf("HeadlineAt(4) = %v, want Two", h)
	}
	if h := doc.HeadlineAt(2); h == nil || h.Title != "One" {
		t.Errorf("HeadlineAt(2) = %v, want One", h)
	}
	if h := doc.HeadlineAt(5); h == nil || h.Title != "Three" {
		t.Errorf("HeadlineAt(5) = %v, want Three", h)
	}
}

func TestDocument_StringRoundTrip(t *testing.T) {
	text := "* One\nbody\n** Two\n"
	doc := parseLines(t, text)
	if doc.String() != text {
		t.Errorf("String() = %q, want %q", doc.String(), text)
	}
}
