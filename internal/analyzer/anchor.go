package analyzer

import (
	"regexp"
	"strings"

	"github.com/fortuna/augur/internal/config"
)

const (
	minAnchorLen = 2
	maxAnchorLen = 50

	// DefaultMinOverlap is the fraction of characters that must agree
	// between a line token and a dictionary token for a noisy-OCR match.
	DefaultMinOverlap = 0.6
)

var (
	// Pure decimal odds ("1.28") and currency amounts ("£10.00") are
	// supporting lines, never anchors.
	pureOddsPattern = regexp.MustCompile(`^\d+\.\d{1,2}$`)
	currencyPattern = regexp.MustCompile(`^[£$€]\s*\d+(\.\d+)?$`)

	// Fixture lines ("Liverpool v Bournemouth") describe a selection but
	// do not start one.
	fixturePattern = regexp.MustCompile(`(?i)^(.{2,40}?)\s+vs?\.?\s+(.{2,40})$`)
)

// Classifier decides whether an OCR line starts a new selection block.
// Matching is deliberately lenient: a missed anchor silently drops a whole
// selection, while a false positive merely opens an empty block that the
// parser discards for lacking odds.
type Classifier struct {
	// MinOverlap tunes how much OCR mangling is tolerated. Raising it
	// trades recall for precision.
	MinOverlap float64

	teams  []string // normalized
	tokens []string // market tokens, lowercase
}

// NewClassifier builds a classifier over the given dictionary.
func NewClassifier(dict *config.Dictionary) *Classifier {
	c := &Classifier{MinOverlap: DefaultMinOverlap}
	for _, t := range dict.Teams {
		if n := Normalize(t); n != "" {
			c.teams = append(c.teams, n)
		}
	}
	for _, t := range dict.MarketTokens {
		c.tokens = append(c.tokens, strings.ToLower(t))
	}
	return c
}

// IsAnchor reports whether the line starts a new selection block.
func (c *Classifier) IsAnchor(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < minAnchorLen || len(trimmed) > maxAnchorLen {
		return false
	}
	if pureOddsPattern.MatchString(trimmed) || currencyPattern.MatchString(trimmed) {
		return false
	}
	if fixturePattern.MatchString(trimmed) {
		return false
	}

	// Market tokens anchor on their own ("Yes", "Over 2.5 Goals").
	if tok, ok := c.MarketToken(trimmed); ok && tok != "" {
		return true
	}

	norm := Normalize(trimmed)
	if norm == "" {
		return false
	}

	for _, team := range c.teams {
		if strings.Contains(norm, team) {
			return true
		}
		// Short forms: the line may hold a fragment of a multi-word name.
		if len(norm) >= 4 && strings.Contains(team, norm) {
			return true
		}
		if c.fuzzyTeamMatch(norm, team) {
			return true
		}
	}

	return false
}

// MarketToken returns the canonical market token the line starts with
// (Yes, No, Over, Under), if any.
func (c *Classifier) MarketToken(line string) (string, bool) {
	first := strings.ToLower(strings.Trim(firstWord(line), ".,:"))
	for _, tok := range c.tokens {
		if first == tok {
			return strings.ToUpper(tok[:1]) + tok[1:], true
		}
	}
	return "", false
}

// fuzzyTeamMatch compares each word of the line against each word of a
// known team name, tolerating OCR substitutions ("Sp0rs" vs "spurs").
func (c *Classifier) fuzzyTeamMatch(line, team string) bool {
	for _, tw := range strings.Fields(team) {
		if len(tw) < 4 {
			continue
		}
		for _, lw := range strings.Fields(line) {
			if overlapRatio(lw, tw) >= c.MinOverlap {
				return true
			}
		}
	}
	return false
}

// overlapRatio measures positional character agreement between two words.
// Words whose lengths differ by more than two characters never match.
func overlapRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > 2 {
		return 0
	}

	n := la
	if lb < n {
		n = lb
	}
	same := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			same++
		}
	}

	max := la
	if lb > max {
		max = lb
	}
	return float64(same) / float64(max)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
