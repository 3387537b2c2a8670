package storage

// SnapshotStore archives scan results as JSON documents. The pipeline never
// reads these back; they exist as an operational audit trail.
type SnapshotStore interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(filename string) error
}
