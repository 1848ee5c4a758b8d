package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/augur/internal/sources"
)

func result(home, away string) *sources.MatchResult {
	return &sources.MatchResult{
		HomeTeam: home,
		AwayTeam: away,
		Status:   sources.StatusFinished,
	}
}

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory(10)
	ctx := context.Background()

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	m.Set(ctx, "k1", result("Liverpool", "Arsenal"), time.Minute)

	got, ok := m.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "Liverpool", got.HomeTeam)
}

func TestMemoryTTLExpiry(t *testing.T) {
	m := NewMemory(10)
	ctx := context.Background()

	now := time.Now()
	m.clock = func() time.Time { return now }

	m.Set(ctx, "k1", result("Liverpool", "Arsenal"), time.Minute)

	_, ok := m.Get(ctx, "k1")
	assert.True(t, ok)

	// Advance past the TTL: the entry is gone and removed lazily.
	now = now.Add(2 * time.Minute)
	_, ok = m.Get(ctx, "k1")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryCapacityEviction(t *testing.T) {
	m := NewMemory(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), result("H", "A"), time.Minute)
	}

	// Touch k0 so k1 becomes least recently used.
	_, ok := m.Get(ctx, "k0")
	require.True(t, ok)

	m.Set(ctx, "k3", result("H", "A"), time.Minute)

	assert.Equal(t, 3, m.Len())
	_, ok = m.Get(ctx, "k1")
	assert.False(t, ok, "least recently used entry should have been evicted")
	_, ok = m.Get(ctx, "k0")
	assert.True(t, ok)
}

func TestMemoryOverwriteRefreshes(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	m.Set(ctx, "k1", result("Old", "A"), time.Minute)
	m.Set(ctx, "k1", result("New", "A"), time.Minute)

	assert.Equal(t, 1, m.Len())
	got, ok := m.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "New", got.HomeTeam)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory(50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", i%20)
				m.Set(ctx, key, result("H", "A"), time.Minute)
				m.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, m.Len(), 50)
}
