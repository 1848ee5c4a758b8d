package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDictionary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDictionaryEmptyPathUsesDefaults(t *testing.T) {
	dict, err := LoadDictionary("")
	require.NoError(t, err)
	assert.Contains(t, dict.Teams, "Liverpool")
	assert.Contains(t, dict.Markets, "Full Time Result")
	assert.Contains(t, dict.MarketTokens, "Over")
}

func TestLoadDictionaryFile(t *testing.T) {
	path := writeDictionary(t, `
teams:
  - Wrexham
  - Notts County
markets:
  - Full Time Result
market_tokens:
  - "Yes"
`)

	dict, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wrexham", "Notts County"}, dict.Teams)
	assert.Equal(t, []string{"Full Time Result"}, dict.Markets)
	assert.Equal(t, []string{"Yes"}, dict.MarketTokens)
}

func TestLoadDictionaryPartialFileFallsBack(t *testing.T) {
	path := writeDictionary(t, `
teams:
  - Wrexham
`)

	dict, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wrexham"}, dict.Teams)

	def := DefaultDictionary()
	assert.Equal(t, def.Markets, dict.Markets)
	assert.Equal(t, def.MarketTokens, dict.MarketTokens)
}

func TestLoadDictionaryMissingFile(t *testing.T) {
	_, err := LoadDictionary(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDictionaryMalformedYAML(t *testing.T) {
	path := writeDictionary(t, "teams: [unclosed")
	_, err := LoadDictionary(path)
	assert.Error(t, err)
}
