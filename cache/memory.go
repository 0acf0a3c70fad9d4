package cache

import (
	"context"
	"sync"
	"time"

	forecaster "github.com/aouyang1/go-tempcast"
)

type memoryItem struct {
	res     *forecaster.Results
	expires time.Time
}

// MemoryStore keeps results in process. A zero ttl never expires entries.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*forecaster.Results, bool, error) {
	m.mu.RLock()
	item, exists := m.items[key]
	m.mu.RUnlock()
	if !exists {
		return nil, false, nil
	}
	if !item.expires.IsZero() && !m.now().Before(item.expires) {
		m.mu.Lock()
		if cur, ok := m.items[key]; ok && cur.expires.Equal(item.expires) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return item.res, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, res *forecaster.Results) error {
	item := memoryItem{res: res}
	if m.ttl > 0 {
		item.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries including expired ones not yet evicted
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryStore) Close() error {
	return nil
}
