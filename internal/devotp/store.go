// Package devotp keeps the plain text of the most recent verification code per
// channel so a developer can read it back (GET /dev/verification/{channel}).
// It is wired only when APP_ENV is not production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Note accompanies every code served from this store.
const Note = "DEV MODE ONLY"

// Code is a recorded verification code.
type Code struct {
	Value     string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store records plain codes by key (the channel name).
type Store interface {
	// Put records code for key until expiresAt, replacing any earlier code.
	Put(ctx context.Context, key, code string, expiresAt time.Time)
	// Get returns the code for key if present and not expired.
	Get(ctx context.Context, key string) (Code, bool)
	// Clear drops every recorded code.
	Clear(ctx context.Context)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu    sync.RWMutex
	codes map[string]Code
	nowF  func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: make(map[string]Code),
		nowF:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Put(_ context.Context, key, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = Code{Value: code, ExpiresAt: expiresAt}
}

// Get drops the entry when it has expired.
func (s *MemoryStore) Get(_ context.Context, key string) (Code, bool) {
	s.mu.RLock()
	c, ok := s.codes[key]
	s.mu.RUnlock()
	if !ok {
		return Code{}, false
	}
	if !c.ExpiresAt.After(s.nowF()) {
		s.mu.Lock()
		if cur, ok := s.codes[key]; ok && cur == c {
			delete(s.codes, key)
		}
		s.mu.Unlock()
		return Code{}, false
	}
	return c, true
}

func (s *MemoryStore) Clear(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.codes)
}
