package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/fortuna/augur/internal/analyzer"
)

// DefaultConcurrency bounds concurrent outbound resolutions when the
// caller does not specify a chunk size.
const DefaultConcurrency = 3

// BatchOptions configures one FetchAll run.
type BatchOptions struct {
	// Concurrency is the chunk size: at most this many selections
	// resolve at once.
	Concurrency int

	// MatchDate is the slip-level date (YYYY-MM-DD), if the slip
	// carried one.
	MatchDate string

	// OnProgress, if set, is invoked as each selection resolves. It is
	// called from worker goroutines and must be safe for concurrent
	// use.
	OnProgress func(index int, enriched EnrichedSelection)
}

// FetchAll resolves a batch of selections with bounded concurrency.
//
// The input is processed in consecutive chunks of Concurrency; within a
// chunk all resolutions run concurrently and the next chunk starts only
// when every one has finished. Output order always matches input order
// regardless of completion order, and a failure on one selection never
// affects its siblings.
func (r *Resolver) FetchAll(ctx context.Context, selections []analyzer.Selection, opts *BatchOptions) []EnrichedSelection {
	if opts == nil {
		opts = &BatchOptions{}
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	enriched := make([]EnrichedSelection, len(selections))

	for chunkStart := 0; chunkStart < len(selections); chunkStart += concurrency {
		chunkEnd := chunkStart + concurrency
		if chunkEnd > len(selections) {
			chunkEnd = len(selections)
		}

		var wg sync.WaitGroup
		for i := chunkStart; i < chunkEnd; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() {
					// Resolve already recovers internally; this guards
					// the chunk against anything that escapes anyway.
					if rec := recover(); rec != nil {
						r.log.Errorf("batch worker panic for %q: %v", selections[i].Team, rec)
						enriched[i] = EnrichedSelection{
							Selection: selections[i],
							Result:    ResultError,
							Error:     fmt.Sprintf("%v", rec),
						}
					}
					if opts.OnProgress != nil {
						opts.OnProgress(i, enriched[i])
					}
				}()
				enriched[i] = r.Resolve(ctx, selections[i], opts.MatchDate)
			}(i)
		}
		wg.Wait()
	}

	return enriched
}
