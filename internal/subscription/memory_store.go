package subscription

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory subscription store for demo/development.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]*Subscription // by user ID
}

// NewMemoryStore creates a new in-memory subscription store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]*Subscription)}
}

func (m *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *sub
	m.subs[sub.UserID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Update(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[sub.UserID]; !ok {
		return ErrNotFound
	}
	cp := *sub
	m.subs[sub.UserID] = &cp
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]*Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		cp := *s
		subs = append(subs, &cp)
	}
	return subs, nil
}

var _ Store = (*MemoryStore)(nil)
