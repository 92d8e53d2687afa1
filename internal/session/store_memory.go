package session

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps sessions in process memory, used when no Redis is configured.
// Sessions are copied in and out so callers never share state with the store.
type MemoryStore struct {
	mu sync.RWMutex

	byID     map[string]*Session
	bySecret map[string]string // secret -> session id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]*Session),
		bySecret: make(map[string]string),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return ErrInvalidArgs
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[s.ID]; exists {
		return ErrDuplicate
	}
	for _, secret := range s.Secrets() {
		if _, taken := m.bySecret[secret]; taken {
			return ErrDuplicate
		}
	}
	m.byID[s.ID] = s.Clone()
	for _, secret := range s.Secrets() {
		m.bySecret[secret] = s.ID
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.byID[strings.TrimSpace(id)]; ok {
		return s.Clone(), nil
	}
	return nil, nil
}

func (m *MemoryStore) FindBySecret(ctx context.Context, secret string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.bySecret[strings.TrimSpace(secret)]
	if !ok {
		return nil, nil
	}
	return m.byID[id].Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	for _, secret := range cur.Secrets() {
		delete(m.bySecret, secret)
	}
	for _, secret := range next.Secrets() {
		m.bySecret[secret] = next.ID
	}
	m.byID[next.ID] = next
	return next.Clone(), nil
}

func (m *MemoryStore) Close() error { return nil }
