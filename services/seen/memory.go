package seen

import (
	"context"
	"sync"
)

// MemoryStore keeps the set in process memory. It only grows and starts
// empty on every run.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{urls: make(map[string]struct{})}
}

// Has reports whether url is in the set
func (m *MemoryStore) Has(_ context.Context, url string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.urls[url]
	return ok, nil
}

// Add inserts url into the set
func (m *MemoryStore) Add(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[url] = struct{}{}
	return nil
}

// Len returns the number of urls in the set
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.urls)
}
