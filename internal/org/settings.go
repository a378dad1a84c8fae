package org

// TodoKeywordType classifies a todo keyword as workflow-open or done.
type TodoKeywordType string

// Todo keyword classes. Empty means no keyword on the headline.
const (
	TodoKeywordTodo TodoKeywordType = "TODO"
	TodoKeywordDone TodoKeywordType = "DONE"
	TodoKeywordNone TodoKeywordType = ""
)

// TodoKeyword is a matched workflow keyword on a headline title line.
type TodoKeyword struct {
	Value string          `json:"value"`
	Type  TodoKeywordType `json:"type"`
	Range Range           `json:"range"`
}

// Settings is the read-only configuration the parser and mutator consume.
// It is injected explicitly at parse time; there is no package-level state.
type Settings struct {
	// TodoKeywordsAll is the full ordered keyword list, TODO-class keywords
	// first, then DONE-class. Match precedence follows this order.
	TodoKeywordsAll []string
	// TodoKeywordsDone is the subset of TodoKeywordsAll that closes a task.
	TodoKeywordsDone []string

	// IndentMode makes inserted planning/property lines and promote/demote
	// follow the headline's depth with leading spaces.
	IndentMode bool

	// Cosmetic priority markers. Priorities equal to Highest map to 2000,
	// Lowest to 0, anything else (including none) to 1000.
	PriorityHighest string
	PriorityLowest  string

	// DefaultCategory is used when a headline carries no CATEGORY property.
	// Typically the document's file name stem.
	DefaultCategory string
}

// DefaultSettings returns the stock org keyword and priority configuration.
func DefaultSettings() Settings {
	return Settings{
		TodoKeywordsAll:  []string{"TODO", "DONE"},
		TodoKeywordsDone: []string{"DONE"},
		IndentMode:       true,
		PriorityHighest:  "A",
		PriorityLowest:   "C",
	}
}

// keywordType returns the class of a configured keyword value.
func (s Settings) keywordType(value string) TodoKeywordType {
	for _, done := range s.TodoKeywordsDone {
		if done == value {
			return TodoKeywordDone
		}
	}
	return TodoKeywordTodo
}

// inheritableTags computes the tag seed a child headline copies from its
// parent. Inheritance is copy-on-create, not a live reference.
func (s Settings) inheritableTags(parent *Headline) []string {
	if parent == nil || len(parent.Tags) == 0 {
		return nil
	}
	out := make([]string, len(parent.Tags))
	copy(out, parent.Tags)
	return out
}
