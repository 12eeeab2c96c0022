package ports

import "go.trai.ch/busy/internal/core/domain"

// FileStatStore persists FileStat records across build invocations.
//
//go:generate go run go.uber.org/mock/mockgen -source=filestat_store.go -destination=mocks/mock_filestat_store.go -package=mocks
type FileStatStore interface {
	// Load returns every record stored for the project at root, keyed by
	// normalized source path. A store that was never written yields an empty map.
	Load(root string) (map[string]domain.FileStat, error)

	// Save replaces the records stored for the project at root.
	Save(root string, stats map[string]domain.FileStat) error

	// Clear removes the records of the project at root.
	Clear(root string) error
}
