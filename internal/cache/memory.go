package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often expired memory entries are purged.
const DefaultCleanupInterval = 10 * time.Minute

// Memory is an in-process Store.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory store whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{cache: gocache.New(ttl, DefaultCleanupInterval)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, found := m.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := value.([]byte)
	if !ok {
		m.cache.Delete(key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.cache.Set(key, value, ttl)
	return nil
}

// Flush implements Store.
func (m *Memory) Flush(context.Context) error {
	m.cache.Flush()
	return nil
}

// Len returns the number of entries, including expired ones not yet
// purged.
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
