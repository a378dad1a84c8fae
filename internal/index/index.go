package index

// HeadlineIndex defines the interface for outline indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type HeadlineIndex interface {
	UpsertDocument(doc DocumentRow, headlines []HeadlineRow, agenda []AgendaRow) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListDocuments(limit, offset int) ([]DocumentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Agenda(from, to string) ([]AgendaItem, error)
	Close() error
}

// Verify *DB satisfies HeadlineIndex at compile time.
var _ HeadlineIndex = (*DB)(nil)
