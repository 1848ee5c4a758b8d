package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fortuna/augur/internal/analyzer"
)

// ErrNotFound is the non-exceptional negative: the source answered but has
// no match for the query. It triggers fallback to the next source in the
// chain and is never surfaced as a failure.
var ErrNotFound = errors.New("no match found")

// Match statuses.
const (
	StatusFinished  = "FINISHED"
	StatusLive      = "LIVE"
	StatusScheduled = "SCHEDULED"
)

// Match winners.
const (
	WinnerHome = "HOME"
	WinnerAway = "AWAY"
	WinnerDraw = "DRAW"
)

// Source confidence levels, highest first.
const (
	ConfidenceVeryHigh = "very_high"
	ConfidenceHigh     = "high"
	ConfidenceMedium   = "medium"
	ConfidenceLow      = "low"
)

// maxSaneScore guards against scraping garbage: no football match ends 37-0.
const maxSaneScore = 20

// MatchResult is one match outcome as reported by a data source.
type MatchResult struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	HomeScore  int    `json:"home_score"`
	AwayScore  int    `json:"away_score"`
	Winner     string `json:"winner"` // HOME | AWAY | DRAW
	Status     string `json:"status"` // FINISHED | LIVE | SCHEDULED
	Source     string `json:"source"`
	Confidence string `json:"confidence"`
	MatchDate  string `json:"match_date,omitempty"` // YYYY-MM-DD
}

// Score formats the result as "H-A".
func (m *MatchResult) Score() string {
	return fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore)
}

// DeriveWinner classifies a final score.
func DeriveWinner(homeScore, awayScore int) string {
	switch {
	case homeScore > awayScore:
		return WinnerHome
	case awayScore > homeScore:
		return WinnerAway
	default:
		return WinnerDraw
	}
}

// SaneScore reports whether both scores are plausible for a real match.
func SaneScore(homeScore, awayScore int) bool {
	return homeScore >= 0 && homeScore <= maxSaneScore &&
		awayScore >= 0 && awayScore <= maxSaneScore
}

// MatchesTeam reports whether an already-normalized team name matches any
// of the candidate names once those are normalized too. Containment is
// accepted in either direction for names of four characters or more, so
// "Man City" matches "Manchester City".
func MatchesTeam(normTeam string, candidates ...string) bool {
	if normTeam == "" {
		return false
	}
	for _, candidate := range candidates {
		norm := analyzer.Normalize(candidate)
		if norm == "" {
			continue
		}
		if norm == normTeam {
			return true
		}
		if len(normTeam) >= 4 && strings.Contains(norm, normTeam) {
			return true
		}
		if len(norm) >= 4 && strings.Contains(normTeam, norm) {
			return true
		}
	}
	return false
}

// Adapter is the uniform contract every match-data source implements.
// Search returns (nil, ErrNotFound) for "no data"; genuine transport or
// decoding failures are the only real errors. opponent and date may be
// empty when the slip did not yield them.
type Adapter interface {
	Name() string
	Confidence() string
	Search(ctx context.Context, team, opponent, date string) (*MatchResult, error)
}
