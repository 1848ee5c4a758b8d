package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Liverpool", "liverpool"},
		{"strips fc suffix", "Liverpool FC", "liverpool"},
		{"strips afc suffix", "Bournemouth AFC", "bournemouth"},
		{"strips dotted suffix", "Liverpool F.C.", "liverpool"},
		{"strips mid-name suffix", "AFC Bournemouth", "bournemouth"},
		{"collapses whitespace", "  Manchester   City  ", "manchester city"},
		{"keeps real words", "Leeds United", "leeds united"},
		{"empty input", "", ""},
		{"suffix only", "FC", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsStable(t *testing.T) {
	// Normalize must be idempotent: normalizing a normalized name is a
	// no-op, since cache keys and side matching both re-normalize.
	for _, name := range []string{"Liverpool FC", "Man City", "SSC Napoli"} {
		once := Normalize(name)
		assert.Equal(t, once, Normalize(once))
	}
}
