package resolver

import "sync"

// Stats aggregates resolution statistics across a resolver's lifetime.
// All methods are safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	totalRequests int
	cacheHits     int
	cacheMisses   int
	sourceHits    map[string]int
	totalTimeMS   int64
	responses     int
}

// Snapshot is a point-in-time copy of the statistics.
type Snapshot struct {
	TotalRequests int            `json:"total_requests"`
	CacheHits     int            `json:"cache_hits"`
	CacheMisses   int            `json:"cache_misses"`
	SourceHits    map[string]int `json:"source_hits"`
	AvgResponseMS int64          `json:"avg_response_ms"`
}

// NewStats creates an empty statistics collector.
func NewStats() *Stats {
	return &Stats{sourceHits: make(map[string]int)}
}

func (s *Stats) recordRequest() {
	s.mu.Lock()
	s.totalRequests++
	s.mu.Unlock()
}

func (s *Stats) recordCacheHit() {
	s.mu.Lock()
	s.cacheHits++
	s.mu.Unlock()
}

func (s *Stats) recordCacheMiss() {
	s.mu.Lock()
	s.cacheMisses++
	s.mu.Unlock()
}

func (s *Stats) recordSourceHit(source string) {
	s.mu.Lock()
	s.sourceHits[source]++
	s.mu.Unlock()
}

func (s *Stats) recordResponse(ms int64) {
	s.mu.Lock()
	s.totalTimeMS += ms
	s.responses++
	s.mu.Unlock()
}

// Snapshot returns a copy of the current statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	hits := make(map[string]int, len(s.sourceHits))
	for k, v := range s.sourceHits {
		hits[k] = v
	}

	var avg int64
	if s.responses > 0 {
		avg = s.totalTimeMS / int64(s.responses)
	}

	return Snapshot{
		TotalRequests: s.totalRequests,
		CacheHits:     s.cacheHits,
		CacheMisses:   s.cacheMisses,
		SourceHits:    hits,
		AvgResponseMS: avg,
	}
}
