package cache

import (
	"context"
	"time"

	"github.com/fortuna/augur/internal/sources"
)

// Store is the resolver's view of a match-result cache. Implementations
// must be safe for concurrent use; last-writer-wins on a contended key is
// acceptable.
type Store interface {
	// Get returns the cached result for key, or (nil, false) on a miss
	// or expired entry.
	Get(ctx context.Context, key string) (*sources.MatchResult, bool)

	// Set stores the result under key for the given TTL. Capacity
	// eviction may run synchronously.
	Set(ctx context.Context, key string, value *sources.MatchResult, ttl time.Duration)
}
