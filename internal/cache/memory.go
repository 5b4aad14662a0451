package cache

import (
	"context"
	"sync"
	"time"

	"github.com/trendmart/storefront/internal/domain/recommend"
)

// Memory is a process-local recommendation cache used when no redis address
// is configured. Entries expire lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	items     []recommend.Item
	expiresAt time.Time
}

// NewMemory creates an in-memory recommendation cache. A non-positive ttl
// falls back to DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, userID string) ([]recommend.Item, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, userID)
		m.mu.Unlock()
		return nil, false, nil
	}
	return append([]recommend.Item(nil), e.items...), true, nil
}

func (m *Memory) Set(_ context.Context, userID string, items []recommend.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = memoryEntry{
		items:     append([]recommend.Item(nil), items...),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}
