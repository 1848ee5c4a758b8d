package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/logging"
	"github.com/fortuna/augur/internal/sources"
)

// Config holds resolver tuning knobs.
type Config struct {
	SourceTimeout time.Duration // per-source lookup deadline
	CacheTTL      time.Duration // how long resolved results stay cached
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() *Config {
	return &Config{
		SourceTimeout: 8 * time.Second,
		CacheTTL:      6 * time.Hour,
	}
}

// Resolver determines the real-world outcome of a selection by querying a
// priority-ordered chain of match-data sources with per-source timeout and
// fallback, backed by a shared cache.
type Resolver struct {
	chain []sources.Adapter
	cache cache.Store
	log   logging.Logger
	cfg   *Config
	stats *Stats
}

// New creates a Resolver over the given source chain. The chain is tried
// in slice order; the first non-nil result wins.
func New(chain []sources.Adapter, store cache.Store, logger logging.Logger, cfg *Config) *Resolver {
	if store == nil {
		store = cache.NewMemory(cache.DefaultCapacity)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Resolver{
		chain: chain,
		cache: store,
		log:   logger,
		cfg:   cfg,
		stats: NewStats(),
	}
}

// Stats exposes the resolver's aggregated run statistics.
func (r *Resolver) Stats() *Stats {
	return r.stats
}

// Resolve enriches one selection with its match outcome. It never returns
// an error and never panics: source failures are absorbed by fallback,
// chain exhaustion yields result "unknown", and anything unexpected is
// converted to result "error".
func (r *Resolver) Resolve(ctx context.Context, sel analyzer.Selection, matchDate string) (enriched EnrichedSelection) {
	start := time.Now()
	enriched = EnrichedSelection{Selection: sel, Result: ResultUnknown}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("resolver panic for %q: %v", sel.Team, rec)
			enriched.Result = ResultError
			enriched.Error = fmt.Sprintf("%v", rec)
		}
		enriched.ResponseTimeMS = time.Since(start).Milliseconds()
		r.stats.recordResponse(enriched.ResponseTimeMS)
	}()

	r.stats.recordRequest()

	key := cacheKey(sel, matchDate)

	if result, ok := r.cache.Get(ctx, key); ok {
		r.stats.recordCacheHit()
		r.log.Debugf("cache hit for %s", key)
		r.apply(&enriched, result, result.Source+" (cached)")
		return enriched
	}
	r.stats.recordCacheMiss()

	result := r.searchChain(ctx, sel, matchDate)
	if result == nil {
		enriched.Result = ResultUnknown
		enriched.Status = StatusNotFound
		return enriched
	}

	r.cache.Set(ctx, key, result, r.cfg.CacheTTL)
	r.apply(&enriched, result, result.Source)
	return enriched
}

// searchChain walks the source chain in priority order, racing each lookup
// against the per-source timeout. Failures and negatives both fall through
// to the next source.
func (r *Resolver) searchChain(ctx context.Context, sel analyzer.Selection, matchDate string) *sources.MatchResult {
	for _, src := range r.chain {
		result, err := r.searchOne(ctx, src, sel, matchDate)
		if err != nil {
			if errors.Is(err, sources.ErrNotFound) {
				r.log.Debugf("%s: no match for %q", src.Name(), sel.Team)
			} else {
				r.log.Warnf("%s failed for %q: %v (falling back)", src.Name(), sel.Team, err)
			}
			continue
		}
		if result == nil {
			continue
		}

		if result.Source == "" {
			result.Source = src.Name()
		}
		if result.Confidence == "" {
			result.Confidence = src.Confidence()
		}
		r.stats.recordSourceHit(src.Name())
		r.log.Infof("✓ %s resolved %q: %s %s %s", src.Name(), sel.Team,
			result.HomeTeam, result.Score(), result.AwayTeam)
		return result
	}
	return nil
}

// searchOne races a single source lookup against the configured timeout.
// On expiry the in-flight call is abandoned; its eventual result is
// ignored.
func (r *Resolver) searchOne(ctx context.Context, src sources.Adapter, sel analyzer.Selection, matchDate string) (*sources.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout)
	defer cancel()

	type outcome struct {
		result *sources.MatchResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("source panic: %v", rec)}
			}
		}()
		result, err := src.Search(ctx, sel.Team, sel.Opponent, matchDate)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s timed out after %v", src.Name(), r.cfg.SourceTimeout)
	case o := <-done:
		return o.result, o.err
	}
}

// apply copies the match result onto the enriched selection and runs the
// win/loss determination for the selection's market.
func (r *Resolver) apply(enriched *EnrichedSelection, result *sources.MatchResult, sourceLabel string) {
	enriched.Source = sourceLabel
	enriched.ResultConfidence = result.Confidence
	enriched.Status = strings.ToLower(result.Status)
	if result.Status == sources.StatusFinished {
		enriched.Score = result.Score()
	}
	enriched.Result = determineOutcome(enriched.Selection, result)
}

// determineOutcome decides win/loss/pending/unknown for a selection given
// a resolved match.
//
// Only FINISHED matches are decidable. For Full Time Result a drawn match
// counts as a loss for either single-team selection: bookmaker convention
// for this market, not an oversight. Markets without a modeled rule yield
// "unknown".
func determineOutcome(sel analyzer.Selection, result *sources.MatchResult) string {
	if result.Status != sources.StatusFinished {
		return ResultPending
	}

	switch sel.Market {
	case "Full Time Result", "Match Result":
		normTeam := analyzer.Normalize(sel.Team)

		var side string
		switch {
		case sources.MatchesTeam(normTeam, result.HomeTeam):
			side = sources.WinnerHome
		case sources.MatchesTeam(normTeam, result.AwayTeam):
			side = sources.WinnerAway
		default:
			// The resolved match does not involve this team side;
			// refuse to guess.
			return ResultUnknown
		}

		if result.Winner == sources.WinnerDraw {
			return ResultLoss
		}
		if result.Winner == side {
			return ResultWin
		}
		return ResultLoss

	default:
		return ResultUnknown
	}
}

// cacheKey builds the composite cache key for a selection. Missing
// opponents and dates collapse to fixed placeholders so equivalent queries
// share an entry.
func cacheKey(sel analyzer.Selection, matchDate string) string {
	team := analyzer.Normalize(sel.Team)
	opponent := analyzer.Normalize(sel.Opponent)
	if opponent == "" {
		opponent = "unknown"
	}
	if matchDate == "" {
		matchDate = "any"
	}
	return team + "|" + opponent + "|" + matchDate
}
