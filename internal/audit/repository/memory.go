package repository

import (
	"context"
	"errors"
	"sync"

	"docverify-portal/internal/audit/domain"
)

// DefaultCapacity bounds a Memory repository created with capacity <= 0.
const DefaultCapacity = 1000

var ErrNilEntry = errors.New("audit: nil entry")

// Memory keeps the most recent events in memory; the oldest are dropped once capacity is reached.
type Memory struct {
	mu       sync.RWMutex
	entries  []*domain.AuditLog
	capacity int
}

var _ Repository = (*Memory)(nil)

// NewMemory returns an empty Memory holding at most capacity events.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{capacity: capacity}
}

func (m *Memory) Create(_ context.Context, a *domain.AuditLog) error {
	if a == nil {
		return ErrNilEntry
	}
	cp := *a
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(m.entries) {
		start = len(m.entries) - limit
	}
	out := make([]*domain.AuditLog, 0, len(m.entries)-start)
	for _, e := range m.entries[start:] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
