package resolver

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/sources"
)

// jitterAdapter resolves every team as a home win after a random delay, so
// completion order within a chunk is effectively shuffled.
type jitterAdapter struct {
	maxDelay time.Duration
	inFlight int32
	peak     int32
}

func (j *jitterAdapter) Name() string       { return "jitter" }
func (j *jitterAdapter) Confidence() string { return sources.ConfidenceHigh }

func (j *jitterAdapter) Search(ctx context.Context, team, opponent, date string) (*sources.MatchResult, error) {
	n := atomic.AddInt32(&j.inFlight, 1)
	defer atomic.AddInt32(&j.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&j.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&j.peak, peak, n) {
			break
		}
	}

	if j.maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(j.maxDelay))))
	}
	return &sources.MatchResult{
		HomeTeam:  team,
		AwayTeam:  "Opponent",
		HomeScore: 1,
		AwayScore: 0,
		Winner:    sources.WinnerHome,
		Status:    sources.StatusFinished,
	}, nil
}

func batchSelections(n int) []analyzer.Selection {
	sels := make([]analyzer.Selection, n)
	for i := range sels {
		sels[i] = analyzer.Selection{
			Team:   fmt.Sprintf("Team %02d", i),
			Odds:   1.50,
			Market: "Full Time Result",
		}
	}
	return sels
}

func TestFetchAllPreservesOrder(t *testing.T) {
	for _, concurrency := range []int{1, 2, 3, 7, 25} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			r := newTestResolver(&jitterAdapter{maxDelay: 20 * time.Millisecond})
			sels := batchSelections(12)

			enriched := r.FetchAll(context.Background(), sels, &BatchOptions{Concurrency: concurrency})

			require.Len(t, enriched, len(sels))
			for i, e := range enriched {
				assert.Equal(t, sels[i].Team, e.Team, "slot %d", i)
				assert.Equal(t, ResultWin, e.Result)
			}
		})
	}
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	adapter := &jitterAdapter{maxDelay: 10 * time.Millisecond}
	r := newTestResolver(adapter)

	r.FetchAll(context.Background(), batchSelections(10), &BatchOptions{Concurrency: 3})

	assert.LessOrEqual(t, atomic.LoadInt32(&adapter.peak), int32(3))
}

func TestFetchAllDefaultConcurrency(t *testing.T) {
	adapter := &jitterAdapter{maxDelay: 10 * time.Millisecond}
	r := newTestResolver(adapter)

	enriched := r.FetchAll(context.Background(), batchSelections(8), nil)

	require.Len(t, enriched, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&adapter.peak), int32(DefaultConcurrency))
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	// The chain only knows Liverpool fixtures; everything else exhausts.
	known := finishedMatch("Liverpool", "Bournemouth", 2, 0)
	r := newTestResolver(&selectiveAdapter{team: "Liverpool", result: known})

	sels := []analyzer.Selection{
		ftrSelection("Liverpool"),
		ftrSelection("Atlantis United"),
		ftrSelection("Liverpool"),
	}

	enriched := r.FetchAll(context.Background(), sels, &BatchOptions{Concurrency: 3})

	require.Len(t, enriched, 3)
	assert.Equal(t, ResultWin, enriched[0].Result)
	assert.Equal(t, ResultUnknown, enriched[1].Result)
	assert.Equal(t, StatusNotFound, enriched[1].Status)
	assert.Equal(t, ResultWin, enriched[2].Result)
}

func TestFetchAllEmptyBatch(t *testing.T) {
	r := newTestResolver(&jitterAdapter{})

	enriched := r.FetchAll(context.Background(), nil, nil)
	assert.Empty(t, enriched)
}

func TestFetchAllReportsProgress(t *testing.T) {
	r := newTestResolver(&jitterAdapter{maxDelay: 5 * time.Millisecond})
	sels := batchSelections(6)

	var mu sync.Mutex
	seen := make(map[int]string)

	r.FetchAll(context.Background(), sels, &BatchOptions{
		Concurrency: 2,
		OnProgress: func(index int, e EnrichedSelection) {
			mu.Lock()
			seen[index] = e.Team
			mu.Unlock()
		},
	})

	require.Len(t, seen, len(sels))
	for i, sel := range sels {
		assert.Equal(t, sel.Team, seen[i])
	}
}

// selectiveAdapter only resolves one team, everything else is a miss.
type selectiveAdapter struct {
	team   string
	result *sources.MatchResult
}

func (s *selectiveAdapter) Name() string       { return "selective" }
func (s *selectiveAdapter) Confidence() string { return sources.ConfidenceVeryHigh }

func (s *selectiveAdapter) Search(ctx context.Context, team, opponent, date string) (*sources.MatchResult, error) {
	if team != s.team {
		return nil, sources.ErrNotFound
	}
	result := *s.result
	return &result, nil
}
