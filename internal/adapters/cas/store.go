// Package cas persists the incremental build state of a project.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// storeVersion is bumped whenever the on-disk layout changes.
	// A store written by another version is discarded, which forces a full rebuild.
	storeVersion = 2

	dirPerm  = 0o750
	filePerm = 0o644
)

type document struct {
	Version int                        `json:"version"`
	Files   map[string]domain.FileStat `json:"files"`
}

// Store implements ports.FileStatStore using one JSON file per project.
type Store struct {
	mu sync.Mutex
}

// NewStore creates a new FileStatStore.
func NewStore() *Store {
	return &Store{}
}

// Path is the file holding the records of the project at root.
func Path(root string) string {
	return filepath.Join(root, domain.DefaultStorePath, domain.FileStatsFileName)
}

// Load reads the records of the project at root.
func (s *Store) Load(root string) (map[string]domain.FileStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := Path(root)
	//nolint:gosec // Path is derived from the project root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]domain.FileStat{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	if len(data) == 0 {
		return map[string]domain.FileStat{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", path)
	}
	if doc.Version != storeVersion || doc.Files == nil {
		return map[string]domain.FileStat{}, nil
	}
	return doc.Files, nil
}

// Save replaces the records of the project at root.
// The file is written next to its final location and renamed into place.
func (s *Store) Save(root string, stats map[string]domain.FileStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stats == nil {
		stats = map[string]domain.FileStat{}
	}
	data, err := json.MarshalIndent(document{Version: storeVersion, Files: stats}, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	path := Path(root)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, domain.FileStatsFileName+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}

// Clear removes the stored records of the project at root.
func (s *Store) Clear(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(Path(root)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", Path(root))
	}
	return nil
}
