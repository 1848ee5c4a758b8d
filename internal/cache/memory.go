package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/fortuna/augur/internal/sources"
)

// DefaultCapacity bounds the in-memory cache when no capacity is given.
const DefaultCapacity = 1000

// Memory is a bounded in-process cache with per-entry TTL and LRU
// eviction. It is the default cache backend; the service runs without any
// external infrastructure.
type Memory struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	clock    func() time.Time
}

type memoryEntry struct {
	key       string
	value     *sources.MatchResult
	expiresAt time.Time
}

// NewMemory creates an in-memory cache holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		clock:    time.Now,
	}
}

// Get returns the cached result for key. Expired entries are removed
// lazily on access.
func (m *Memory) Get(_ context.Context, key string) (*sources.MatchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*memoryEntry)
	if m.clock().After(entry.expiresAt) {
		m.order.Remove(elem)
		delete(m.entries, key)
		return nil, false
	}

	m.order.MoveToFront(elem)
	return entry.value, true
}

// Set stores value under key. Writing an existing key refreshes its TTL
// and recency; exceeding capacity evicts the least recently used entry.
func (m *Memory) Set(_ context.Context, key string, value *sources.MatchResult, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.clock().Add(ttl)

	if elem, ok := m.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		m.order.MoveToFront(elem)
		return
	}

	elem := m.order.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	m.entries[key] = elem

	for m.order.Len() > m.capacity {
		oldest := m.order.Back()
		if oldest == nil {
			break
		}
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoryEntry).key)
	}
}

// Len reports the current entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
