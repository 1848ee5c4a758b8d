package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/sources"
)

// stubAdapter is a scriptable source for tests.
type stubAdapter struct {
	name       string
	confidence string
	result     *sources.MatchResult
	err        error
	delay      time.Duration
	calls      int32
}

func (s *stubAdapter) Name() string       { return s.name }
func (s *stubAdapter) Confidence() string { return s.confidence }

func (s *stubAdapter) Search(ctx context.Context, team, opponent, date string) (*sources.MatchResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result == nil {
		return nil, sources.ErrNotFound
	}
	// Return a copy so the resolver can annotate it freely.
	result := *s.result
	return &result, nil
}

func (s *stubAdapter) callCount() int {
	return int(atomic.LoadInt32(&s.calls))
}

func finishedMatch(home, away string, homeScore, awayScore int) *sources.MatchResult {
	return &sources.MatchResult{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: homeScore,
		AwayScore: awayScore,
		Winner:    sources.DeriveWinner(homeScore, awayScore),
		Status:    sources.StatusFinished,
	}
}

func ftrSelection(team string) analyzer.Selection {
	return analyzer.Selection{Team: team, Odds: 1.50, Market: "Full Time Result"}
}

func newTestResolver(chain ...sources.Adapter) *Resolver {
	return New(chain, cache.NewMemory(100), nil, &Config{
		SourceTimeout: 200 * time.Millisecond,
		CacheTTL:      time.Minute,
	})
}

func TestResolveWinLossDraw(t *testing.T) {
	tests := []struct {
		name  string
		team  string
		match *sources.MatchResult
		want  string
	}{
		{"winning home side", "Liverpool", finishedMatch("Liverpool", "Bournemouth", 2, 0), ResultWin},
		{"losing home side", "Liverpool", finishedMatch("Liverpool", "Bournemouth", 0, 1), ResultLoss},
		{"winning away side", "Bournemouth", finishedMatch("Liverpool", "Bournemouth", 0, 1), ResultWin},
		{"drawn match is a loss", "Liverpool", finishedMatch("Liverpool", "Bournemouth", 1, 1), ResultLoss},
		{"team not in fixture", "Arsenal", finishedMatch("Liverpool", "Bournemouth", 2, 0), ResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(&stubAdapter{name: "primary", confidence: sources.ConfidenceVeryHigh, result: tt.match})

			enriched := r.Resolve(context.Background(), ftrSelection(tt.team), "")
			assert.Equal(t, tt.want, enriched.Result)
		})
	}
}

func TestResolveNonFinishedIsPending(t *testing.T) {
	match := &sources.MatchResult{
		HomeTeam: "Liverpool",
		AwayTeam: "Bournemouth",
		Status:   sources.StatusLive,
	}
	r := newTestResolver(&stubAdapter{name: "primary", confidence: sources.ConfidenceHigh, result: match})

	enriched := r.Resolve(context.Background(), ftrSelection("Liverpool"), "")
	assert.Equal(t, ResultPending, enriched.Result)
	assert.Empty(t, enriched.Score)
}

func TestResolveUnmodeledMarketIsUnknown(t *testing.T) {
	r := newTestResolver(&stubAdapter{name: "primary", confidence: sources.ConfidenceHigh,
		result: finishedMatch("Liverpool", "Bournemouth", 2, 0)})

	sel := analyzer.Selection{Team: "Yes", Odds: 1.80, Market: "Both Teams To Score"}
	enriched := r.Resolve(context.Background(), sel, "")
	assert.Equal(t, ResultUnknown, enriched.Result)
	assert.Equal(t, "2-0", enriched.Score)
}

func TestResolveFallbackOrder(t *testing.T) {
	first := &stubAdapter{name: "first", confidence: sources.ConfidenceVeryHigh, err: errors.New("http 500")}
	second := &stubAdapter{name: "second", confidence: sources.ConfidenceHigh}
	third := &stubAdapter{name: "third", confidence: sources.ConfidenceMedium,
		result: finishedMatch("Liverpool", "Bournemouth", 3, 1)}
	fourth := &stubAdapter{name: "fourth", confidence: sources.ConfidenceLow,
		result: finishedMatch("Liverpool", "Bournemouth", 3, 1)}

	r := newTestResolver(first, second, third, fourth)

	enriched := r.Resolve(context.Background(), ftrSelection("Liverpool"), "")

	assert.Equal(t, ResultWin, enriched.Result)
	assert.Equal(t, "third", enriched.Source)
	assert.Equal(t, 1, first.callCount())
	assert.Equal(t, 1, second.callCount())
	assert.Equal(t, 1, third.callCount())
	assert.Equal(t, 0, fourth.callCount(), "chain must stop at the first hit")
}

func TestResolveTimeoutFallsBack(t *testing.T) {
	slow := &stubAdapter{name: "slow", confidence: sources.ConfidenceVeryHigh,
		delay:  time.Second,
		result: finishedMatch("Liverpool", "Bournemouth", 0, 2)}
	fast := &stubAdapter{name: "fast", confidence: sources.ConfidenceHigh,
		result: finishedMatch("Liverpool", "Bournemouth", 2, 0)}

	r := newTestResolver(slow, fast)

	enriched := r.Resolve(context.Background(), ftrSelection("Liverpool"), "")
	assert.Equal(t, "fast", enriched.Source)
	assert.Equal(t, ResultWin, enriched.Result)
}

func TestResolveExhaustionIsUnknown(t *testing.T) {
	adapterA := &stubAdapter{name: "a", confidence: sources.ConfidenceVeryHigh}
	adapterB := &stubAdapter{name: "b", confidence: sources.ConfidenceHigh}
	adapterC := &stubAdapter{name: "c", confidence: sources.ConfidenceMedium}
	adapterD := &stubAdapter{name: "d", confidence: sources.ConfidenceLow}

	r := newTestResolver(adapterA, adapterB, adapterC, adapterD)

	enriched := r.Resolve(context.Background(), ftrSelection("Liverpool"), "")

	assert.Equal(t, ResultUnknown, enriched.Result)
	assert.Equal(t, StatusNotFound, enriched.Status)
	assert.Empty(t, enriched.Error)
	for _, a := range []*stubAdapter{adapterA, adapterB, adapterC, adapterD} {
		assert.Equal(t, 1, a.callCount())
	}
}

func TestResolveCachesResults(t *testing.T) {
	primary := &stubAdapter{name: "primary", confidence: sources.ConfidenceVeryHigh,
		result: finishedMatch("Liverpool", "Bournemouth", 2, 0)}
	r := newTestResolver(primary)

	sel := ftrSelection("Liverpool")
	sel.Opponent = "Bournemouth"

	first := r.Resolve(context.Background(), sel, "2026-03-14")
	second := r.Resolve(context.Background(), sel, "2026-03-14")

	assert.Equal(t, 1, primary.callCount(), "second resolve must be served from cache")
	assert.Equal(t, "primary", first.Source)
	assert.Equal(t, "primary (cached)", second.Source)
	assert.Equal(t, first.Result, second.Result)

	snapshot := r.Stats().Snapshot()
	assert.Equal(t, 2, snapshot.TotalRequests)
	assert.Equal(t, 1, snapshot.CacheHits)
	assert.Equal(t, 1, snapshot.CacheMisses)
}

func TestResolveSourcePanicIsAbsorbed(t *testing.T) {
	panicky := panicAdapter{}
	backup := &stubAdapter{name: "backup", confidence: sources.ConfidenceLow,
		result: finishedMatch("Liverpool", "Bournemouth", 2, 0)}

	r := newTestResolver(panicky, backup)

	enriched := r.Resolve(context.Background(), ftrSelection("Liverpool"), "")
	assert.Equal(t, ResultWin, enriched.Result)
	assert.Equal(t, "backup", enriched.Source)
}

type panicAdapter struct{}

func (panicAdapter) Name() string       { return "panicky" }
func (panicAdapter) Confidence() string { return sources.ConfidenceVeryHigh }
func (panicAdapter) Search(context.Context, string, string, string) (*sources.MatchResult, error) {
	panic("adapter bug")
}

func TestResolveNeverReturnsError(t *testing.T) {
	r := newTestResolver(panicAdapter{})

	enriched := r.Resolve(context.Background(), ftrSelection("Liverpool"), "")
	require.NotNil(t, enriched)
	// A chain of only broken sources exhausts to unknown; the panic was
	// absorbed at the source boundary.
	assert.Equal(t, ResultUnknown, enriched.Result)
}
