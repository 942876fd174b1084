package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory token store for demo/development.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]*Token // by token string
}

// NewMemoryStore creates a new in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]*Token)}
}

func (m *MemoryStore) Create(_ context.Context, tok *Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *tok
	m.tokens[tok.Token] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, tokenStr string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tokens[tokenStr]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// MarkUsed performs the usage-cap check and increment under the write lock,
// so concurrent redemptions of a capped token cannot both succeed.
func (m *MemoryStore) MarkUsed(_ context.Context, tokenStr string) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[tokenStr]
	if !ok {
		return nil, ErrNotFound
	}
	if t.MaxUses > 0 && t.UsageCount >= t.MaxUses {
		return nil, ErrUsageExceeded
	}

	now := time.Now()
	t.Used = true
	t.UsedAt = &now
	t.UsageCount++

	cp := *t
	return &cp, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := make([]*Token, 0, len(m.tokens))
	for _, t := range m.tokens {
		cp := *t
		tokens = append(tokens, &cp)
	}
	return tokens, nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tokens []*Token
	for _, t := range m.tokens {
		if t.UserID == userID {
			cp := *t
			tokens = append(tokens, &cp)
		}
	}
	return tokens, nil
}

var _ Store = (*MemoryStore)(nil)
