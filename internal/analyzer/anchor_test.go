package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/augur/internal/config"
)

func testDictionary() *config.Dictionary {
	return &config.Dictionary{
		Teams: []string{
			"Liverpool", "Arsenal", "Barcelona", "Bournemouth",
			"Manchester City", "Spurs", "Everton",
		},
		Markets: []string{
			"Full Time Result", "Both Teams To Score", "Total Goals",
			"Double Chance",
		},
		MarketTokens: []string{"Yes", "No", "Over", "Under"},
	}
}

func TestIsAnchor(t *testing.T) {
	c := NewClassifier(testDictionary())

	tests := []struct {
		name string
		line string
		want bool
	}{
		{"exact team name", "Liverpool", true},
		{"team with suffix", "Liverpool FC", true},
		{"lowercase team", "liverpool", true},
		{"multi-word team", "Manchester City", true},
		{"partial multi-word team", "Manchester", true},
		{"market token yes", "Yes", true},
		{"market token over with qualifier", "Over 2.5 Goals", true},
		{"market token under", "Under 1.5 Goals", true},
		{"unknown text", "Acca Boost Token", false},
		{"pure odds line", "1.28", false},
		{"one-decimal odds line", "2.5", false},
		{"currency amount", "£10.00", false},
		{"fixture line", "Liverpool v Bournemouth", false},
		{"fixture line vs", "Arsenal vs Everton", false},
		{"too short", "L", false},
		{"too long", "this line is way too long to plausibly be a team name on a slip", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsAnchor(tt.line), "line=%q", tt.line)
		})
	}
}

func TestIsAnchorOCRNoise(t *testing.T) {
	c := NewClassifier(testDictionary())

	// OCR substitutions within the overlap tolerance still anchor.
	assert.True(t, c.IsAnchor("Sp0rs"))
	assert.True(t, c.IsAnchor("Liverpoo1"))
	assert.True(t, c.IsAnchor("Barce1ona"))

	// Tightening the overlap requirement rejects the same noise.
	c.MinOverlap = 1.0
	assert.False(t, c.IsAnchor("Sp0rs"))
	assert.True(t, c.IsAnchor("Spurs"))
}

func TestMarketToken(t *testing.T) {
	c := NewClassifier(testDictionary())

	tok, ok := c.MarketToken("Over 2.5 Goals")
	assert.True(t, ok)
	assert.Equal(t, "Over", tok)

	tok, ok = c.MarketToken("yes")
	assert.True(t, ok)
	assert.Equal(t, "Yes", tok)

	_, ok = c.MarketToken("Liverpool")
	assert.False(t, ok)
}
