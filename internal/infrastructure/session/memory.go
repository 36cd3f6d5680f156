// Package session holds the in-process session store used for guest sessions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// MemoryStore is a ports.SessionStore that forgets everything on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore returns a store whose entries expire after ttl; ttl <= 0 keeps
// them until cleared.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, s *domain.Session) error {
	e := entry{session: cloneSession(s)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.items[s.ID] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	e, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.items, id)
		m.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	s := cloneSession(&e.session)
	return &s, nil
}

func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

func cloneSession(s *domain.Session) domain.Session {
	out := *s
	if s.Account != nil {
		acct := *s.Account
		out.Account = &acct
	}
	return out
}
