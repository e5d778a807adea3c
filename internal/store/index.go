package store

// SkeletonStore defines the interface for durable skeleton and import-graph
// operations. Consumers should depend on this interface rather than the
// concrete *DB type to facilitate testing with mocks.
type SkeletonStore interface {
	UpsertSkeleton(row SkeletonRow, edges []Edge) error
	GetSkeleton(path string) (*SkeletonRow, error)
	DeleteSkeleton(path string) error
	Imports(path string) ([]Edge, error)
	Importers(path string) ([]Edge, error)
	AllEdges() ([]Edge, error)
	AllPaths() (map[string]struct{}, error)
	SkeletonCount() (int, error)
	EdgeCount() (int, error)
	Close() error
}

// Verify *DB satisfies SkeletonStore at compile time.
var _ SkeletonStore = (*DB)(nil)
