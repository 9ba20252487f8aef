package index

// EntryIndex defines the interface for game-data indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type EntryIndex interface {
	UpsertFile(f FileRow, entries []EntryRow) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	ListFiles() ([]FileRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
