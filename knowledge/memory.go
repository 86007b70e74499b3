package knowledge

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// MemoryCatalog is a Catalog with sources registered in process.
type MemoryCatalog struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog returns an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		sources: make(map[string]*Source),
	}
}

// Add adds or replaces the source.
func (m *MemoryCatalog) Add(id string, src *Source) error {
	if id == "" {
		return errors.New("source ID must not be empty")
	}
	if src == nil || !src.Retriever.IsValid() {
		return errors.Newf("source %s: retriever is not set", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[id] = src
	return nil
}

// Remove removes the source.
func (m *MemoryCatalog) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sources, id)
}

func (m *MemoryCatalog) ListSources(_ context.Context) (map[string]*Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make(map[string]*Source, len(m.sources))
	for id, src := range m.sources {
		res[id] = src
	}
	return res, nil
}
