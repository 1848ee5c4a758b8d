package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dictionary holds the team and market vocabularies used by the slip
// analyzer. It is loaded once at startup and passed by reference; nothing
// mutates it afterwards, so it is safe to share across goroutines.
type Dictionary struct {
	// Teams lists known club names. Matching is partial and
	// case-insensitive, so short forms ("Spurs") and full names
	// ("Tottenham Hotspur") can coexist.
	Teams []string `yaml:"teams"`

	// Markets lists canonical market descriptions as they appear on
	// printed slips ("Full Time Result", "Both Teams To Score", ...).
	Markets []string `yaml:"markets"`

	// MarketTokens lists single-token outcomes that start a selection on
	// their own (Yes/No/Over/Under).
	MarketTokens []string `yaml:"market_tokens"`
}

// LoadDictionary reads a YAML dictionary file. An empty path returns the
// built-in default dictionary.
func LoadDictionary(path string) (*Dictionary, error) {
	if path == "" {
		return DefaultDictionary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary file: %w", err)
	}

	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse dictionary file %s: %w", path, err)
	}

	// Missing sections fall back to the defaults so a file can override
	// just the team list.
	def := DefaultDictionary()
	if len(dict.Teams) == 0 {
		dict.Teams = def.Teams
	}
	if len(dict.Markets) == 0 {
		dict.Markets = def.Markets
	}
	if len(dict.MarketTokens) == 0 {
		dict.MarketTokens = def.MarketTokens
	}

	return &dict, nil
}

// DefaultDictionary returns the built-in English football vocabulary.
func DefaultDictionary() *Dictionary {
	return &Dictionary{
		Teams: []string{
			"Arsenal", "Aston Villa", "Bournemouth", "Brentford",
			"Brighton", "Burnley", "Chelsea", "Crystal Palace",
			"Everton", "Fulham", "Ipswich", "Leeds", "Leicester",
			"Liverpool", "Luton", "Manchester City", "Man City",
			"Manchester United", "Man Utd", "Newcastle",
			"Nottingham Forest", "Sheffield United", "Southampton",
			"Sunderland", "Spurs", "Tottenham", "West Ham", "Wolves",
			"Barcelona", "Real Madrid", "Atletico Madrid", "Sevilla",
			"Bayern Munich", "Borussia Dortmund", "Leverkusen",
			"Juventus", "Inter Milan", "AC Milan", "Napoli", "Roma",
			"PSG", "Marseille", "Lyon", "Monaco",
			"Celtic", "Rangers", "Ajax", "PSV", "Porto", "Benfica",
		},
		Markets: []string{
			"Full Time Result",
			"Match Result",
			"Both Teams To Score",
			"Total Goals",
			"Over/Under",
			"Draw No Bet",
			"Double Chance",
			"Correct Score",
			"First Goalscorer",
			"Anytime Goalscorer",
			"To Win To Nil",
			"Half Time Result",
			"Half Time/Full Time",
		},
		MarketTokens: []string{"Yes", "No", "Over", "Under"},
	}
}
