package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/augur/internal/config"
	"github.com/fortuna/augur/internal/logging"
)

// scanState tracks the slip parser's position in the anchor state machine.
type scanState int

const (
	stateScanning scanState = iota
	stateBlockOpen
)

const (
	minOdds = 1.01
	maxOdds = 1000
)

var (
	oddsValuePattern = regexp.MustCompile(`^\d{1,4}\.\d{1,2}$`)

	betRefPattern    = regexp.MustCompile(`(?i)bet\s+ref(?:erence)?\s*[:#]?\s*([A-Z0-9][A-Z0-9/-]+)`)
	betPlacedPattern = regexp.MustCompile(`(?i)bet\s+placed\s+(.+)`)
	stakePattern     = regexp.MustCompile(`(?i)\bstake\s*[:\s]?\s*[£$€]?\s*(\d+(?:\.\d+)?)`)
	toReturnPattern  = regexp.MustCompile(`(?i)to\s+return\s*[:\s]?\s*[£$€]?\s*(\d+(?:\.\d+)?)`)
	boostPattern     = regexp.MustCompile(`(?i)[£$€]?\s*(\d+(?:\.\d+)?)\s+boost\s+applied`)
	// Bet-type summary lines are the type word alone or followed by the
	// combined odds ("Double 3.30"). Anchoring the tail keeps market
	// descriptions like "Double Chance" from matching.
	betTypePattern = regexp.MustCompile(`(?i)^((?:\d+\s+)?fold|single|double|treble|accumulator|acca)\s*(\d{1,4}\.\d{1,2})?\s*$`)

	// terminatorPattern marks slip-level lines that close an open block.
	terminatorPattern = regexp.MustCompile(`(?i)^(stake\b|total\s+stake\b|to\s+return\b|bet\s+ref|bet\s+placed\b|(?:\d+\s+fold|single|double|treble|accumulator|acca)(?:\s+\d{1,4}\.\d{1,2})?\s*$|[£$€]?\s*\d+(\.\d+)?\s+boost\b|cash\s+out\b)`)

	// betPlacedLayouts are the date layouts seen on printed slips, tried
	// in order.
	betPlacedLayouts = []string{
		"02/01/2006 15:04",
		"02/01/2006",
		"2 Jan 2006 15:04",
		"2 Jan 2006",
		"02 Jan 2006",
		"2006-01-02",
	}
)

// Analyzer turns raw OCR text into a structured SlipAnalysis. It is
// stateless between calls and safe for concurrent use.
type Analyzer struct {
	classifier *Classifier
	dict       *config.Dictionary
	log        logging.Logger

	normMarkets []string // lowercase, parallel to dict.Markets
}

// New creates an Analyzer over the given dictionary. A nil logger is
// replaced with a no-op logger.
func New(dict *config.Dictionary, logger logging.Logger) *Analyzer {
	if dict == nil {
		dict = config.DefaultDictionary()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	a := &Analyzer{
		classifier: NewClassifier(dict),
		dict:       dict,
		log:        logger,
	}
	for _, m := range dict.Markets {
		a.normMarkets = append(a.normMarkets, strings.ToLower(m))
	}
	return a
}

// Classifier exposes the anchor classifier so callers can tune leniency.
func (a *Analyzer) Classifier() *Classifier {
	return a.classifier
}

// Analyze parses OCR text into a SlipAnalysis. It never panics: any
// internal failure is recorded in Metadata.ParseErrors and yields
// IsBettingSlip=false.
func (a *Analyzer) Analyze(text string) (analysis *SlipAnalysis) {
	start := time.Now()
	analysis = &SlipAnalysis{Selections: []Selection{}}

	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("analyzer panic recovered: %v", r)
			analysis.IsBettingSlip = false
			analysis.Selections = []Selection{}
			analysis.Metadata.ParseErrors = append(analysis.Metadata.ParseErrors,
				fmt.Sprintf("internal parse failure: %v", r))
		}
		analysis.Metadata.ProcessingMS = time.Since(start).Milliseconds()
	}()

	analysis.Metadata.InputLength = len(text)
	if strings.TrimSpace(text) == "" {
		return analysis
	}

	lines := splitLines(text)
	analysis.Metadata.LineCount = len(lines)

	state := stateScanning
	var block []string

	closeBlock := func() {
		if state != stateBlockOpen {
			return
		}
		if sel, ok := a.parseBlock(block); ok {
			analysis.Selections = append(analysis.Selections, sel)
		} else {
			analysis.Metadata.ParseErrors = append(analysis.Metadata.ParseErrors,
				fmt.Sprintf("selection block %q discarded: no odds value found", block[0]))
		}
		block = nil
		state = stateScanning
	}

	for _, line := range lines {
		// Slip-level markers are extracted independently of the anchor
		// machine and may interleave with selection blocks.
		a.extractSlipMarkers(line, analysis)

		if a.classifier.IsAnchor(line) {
			closeBlock()
			analysis.Metadata.AnchorsFound++
			block = []string{line}
			state = stateBlockOpen
			continue
		}

		if terminatorPattern.MatchString(strings.TrimSpace(line)) {
			closeBlock()
			continue
		}

		if state == stateBlockOpen {
			block = append(block, line)
		}
	}
	closeBlock()

	analysis.IsBettingSlip = len(analysis.Selections) > 0 ||
		analysis.BetRef != nil || analysis.Stake != nil

	a.log.Debugf("analyzed %d lines: %d anchors, %d selections",
		len(lines), analysis.Metadata.AnchorsFound, len(analysis.Selections))

	return analysis
}

// parseBlock turns a closed selection block into a Selection. A block with
// no parseable odds value yields nothing: odds presence is the sole
// admission criterion.
func (a *Analyzer) parseBlock(lines []string) (Selection, bool) {
	anchor := strings.TrimSpace(lines[0])

	sel := Selection{
		Team:     anchor,
		Market:   "Unknown",
		RawLines: lines,
	}

	for _, line := range lines[1:] {
		if odds, ok := parseOddsValue(line); ok {
			sel.Odds = odds
			break
		}
	}
	if sel.Odds == 0 {
		return Selection{}, false
	}

	// An Over/Under anchor is a totals outcome, not a team: the token
	// becomes the team field and the market is forced.
	if tok, ok := a.classifier.MarketToken(anchor); ok {
		sel.Team = tok
		if tok == "Over" || tok == "Under" {
			sel.Market = "Total Goals"
		}
	}

	if sel.Market == "Unknown" {
		for _, line := range lines[1:] {
			if m, ok := a.matchMarket(line); ok {
				sel.Market = m
				break
			}
		}
	}

	for _, line := range lines[1:] {
		home, away, ok := parseFixture(line)
		if !ok {
			continue
		}
		norm := Normalize(sel.Team)
		switch {
		case sideMatches(norm, home):
			sel.Opponent = away
		case sideMatches(norm, away):
			sel.Opponent = home
		}
		break
	}

	sel.Confidence = selectionConfidence(sel)
	return sel, true
}

// selectionConfidence weights parse completeness: odds are guaranteed by
// admission, market and opponent each add a quarter.
func selectionConfidence(sel Selection) float64 {
	conf := 0.5
	if sel.Market != "Unknown" {
		conf += 0.25
	}
	if sel.Opponent != "" {
		conf += 0.25
	}
	return conf
}

// extractSlipMarkers scans one line for slip-level markers (bet reference,
// stake, returns, bet type, boost). First match wins per field.
func (a *Analyzer) extractSlipMarkers(line string, analysis *SlipAnalysis) {
	trimmed := strings.TrimSpace(line)

	if analysis.BetRef == nil {
		if m := betRefPattern.FindStringSubmatch(trimmed); m != nil {
			ref := m[1]
			analysis.BetRef = &ref
		}
	}

	if analysis.MatchDate == nil {
		if m := betPlacedPattern.FindStringSubmatch(trimmed); m != nil {
			if date, ok := parseSlipDate(m[1]); ok {
				analysis.MatchDate = &date
			}
		}
	}

	if analysis.Stake == nil {
		if m := stakePattern.FindStringSubmatch(trimmed); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				analysis.Stake = &v
			}
		}
	}

	if analysis.ToReturn == nil {
		if m := toReturnPattern.FindStringSubmatch(trimmed); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				analysis.ToReturn = &v
			}
		}
	}

	if analysis.Boost == nil {
		if m := boostPattern.FindStringSubmatch(trimmed); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				analysis.Boost = &v
			}
		}
	}

	if analysis.BetType == nil {
		if m := betTypePattern.FindStringSubmatch(trimmed); m != nil {
			bt := canonicalBetType(m[1])
			analysis.BetType = &bt
			if m[2] != "" {
				if v, err := strconv.ParseFloat(m[2], 64); err == nil && v >= minOdds {
					analysis.Odds = &v
				}
			}
		}
	}
}

// matchMarket matches a supporting line against the market vocabulary and
// returns the canonical market name.
func (a *Analyzer) matchMarket(line string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(line))
	for i, m := range a.normMarkets {
		if strings.Contains(lower, m) {
			return a.dict.Markets[i], true
		}
	}
	return "", false
}

// parseOddsValue parses a supporting line as a decimal odds value.
func parseOddsValue(line string) (float64, bool) {
	trimmed := strings.TrimSpace(line)
	if !oddsValuePattern.MatchString(trimmed) {
		return 0, false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v < minOdds || v > maxOdds {
		return 0, false
	}
	return v, true
}

// parseFixture splits an "A v B" / "A vs B" line into its two sides.
func parseFixture(line string) (home, away string, ok bool) {
	m := fixturePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// sideMatches reports whether a normalized team equals (or is contained in)
// one side of a fixture.
func sideMatches(normTeam, side string) bool {
	normSide := Normalize(side)
	if normTeam == "" || normSide == "" {
		return false
	}
	return normSide == normTeam ||
		strings.Contains(normSide, normTeam) ||
		strings.Contains(normTeam, normSide)
}

// parseSlipDate normalizes a printed date to YYYY-MM-DD.
func parseSlipDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range betPlacedLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	// Retry with any trailing OCR noise dropped.
	if fields := strings.Fields(trimmed); len(fields) > 1 {
		return parseSlipDate(strings.Join(fields[:len(fields)-1], " "))
	}
	return "", false
}

func canonicalBetType(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "acca" {
		return "Accumulator"
	}
	// "4 fold" -> "4 Fold"
	fields := strings.Fields(lower)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

// splitLines trims and drops empty lines, preserving order.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
