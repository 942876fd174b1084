package grant

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory grant store for demo/development.
type MemoryStore struct {
	mu     sync.RWMutex
	grants map[string]*Grant // by grant ID
}

// NewMemoryStore creates a new in-memory grant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[string]*Grant)}
}

func (m *MemoryStore) Create(_ context.Context, g *Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *g
	m.grants[g.GrantID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, grantID string) (*Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.grants[grantID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	grants := make([]*Grant, 0, len(m.grants))
	for _, g := range m.grants {
		cp := *g
		grants = append(grants, &cp)
	}
	return grants, nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]*Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var grants []*Grant
	for _, g := range m.grants {
		if g.UserID == userID {
			cp := *g
			grants = append(grants, &cp)
		}
	}
	return grants, nil
}

var _ Store = (*MemoryStore)(nil)
