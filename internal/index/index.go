package index

// LinkIndex defines the interface for link graph operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type LinkIndex interface {
	UpsertDocument(d DocumentRow, links []LinkRow) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Document(path string) (*DocumentRow, error)
	Backlinks(target string) ([]LinkRow, error)
	Outlinks(source string) ([]LinkRow, error)
	Close() error
}

// Verify *DB satisfies LinkIndex at compile time.
var _ LinkIndex = (*DB)(nil)
