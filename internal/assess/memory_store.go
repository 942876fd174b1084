package assess

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory assessment cache.
type MemoryStore struct {
	mu          sync.RWMutex
	assessments map[string]*Assessment // by content ID
}

// NewMemoryStore creates a new in-memory assessment cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assessments: make(map[string]*Assessment)}
}

func (m *MemoryStore) Put(_ context.Context, a *Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *a
	m.assessments[a.ContentID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, contentID string) (*Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assessments[contentID]
	if !ok {
		return nil, ErrNotAssessed
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assessments), nil
}

var _ Store = (*MemoryStore)(nil)
