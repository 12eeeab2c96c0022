package staleness

import (
	"maps"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/busy/internal/core/domain"
)

// Table is the in-memory FileStat set of one build, safe for concurrent use.
// Records are keyed by cleaned object path, so each build mode keeps its own
// record of a shared source.
type Table struct {
	mu    sync.RWMutex
	stats map[string]domain.FileStat
}

// NewTable wraps loaded records. A nil map is allowed.
func NewTable(stats map[string]domain.FileStat) *Table {
	t := &Table{stats: make(map[string]domain.FileStat, len(stats))}
	for k, v := range stats {
		t.stats[filepath.Clean(k)] = v
	}
	return t
}

// Get returns the record of object.
func (t *Table) Get(object string) (domain.FileStat, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fs, ok := t.stats[filepath.Clean(object)]
	return fs, ok
}

// RecordCompile stores the outcome of a successful compile into object.
// The discovered dependencies become both the discovery and compile record.
func (t *Table) RecordCompile(object string, at time.Time, deps []string, commandHash uint64) {
	interned := domain.NewInternedStrings(deps)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats[filepath.Clean(object)] = domain.FileStat{
		Discovery: domain.StatRecord{Timestamp: at, Dependencies: interned},
		Compile:   domain.StatRecord{Timestamp: at, Dependencies: interned, CommandHash: commandHash},
	}
}

// RecordNotCompilable remembers that the builder declined to produce object.
func (t *Table) RecordNotCompilable(object string, at time.Time, commandHash uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats[filepath.Clean(object)] = domain.FileStat{
		Compile:       domain.StatRecord{Timestamp: at, CommandHash: commandHash},
		NotCompilable: true,
	}
}

// NotCompilable reports whether object was declined by its builder.
func (t *Table) NotCompilable(object string) bool {
	fs, ok := t.Get(object)
	return ok && fs.NotCompilable
}

// Forget drops the record of object so the next build recompiles it.
func (t *Table) Forget(object string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.stats, filepath.Clean(object))
}

// Snapshot returns a copy of every record for persisting.
func (t *Table) Snapshot() map[string]domain.FileStat {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.stats)
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.stats)
}
