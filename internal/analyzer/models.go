package analyzer

// Selection represents one leg of a bet parsed from a slip.
type Selection struct {
	Team       string   `json:"team"`
	Odds       float64  `json:"odds"`
	Market     string   `json:"market"`
	Opponent   string   `json:"opponent,omitempty"`
	Confidence float64  `json:"confidence"`
	RawLines   []string `json:"raw_lines,omitempty"`
}

// SlipAnalysis is the complete result of analyzing one piece of OCR text.
// It is built fresh on every Analyze call and never mutated afterwards.
type SlipAnalysis struct {
	IsBettingSlip bool        `json:"is_betting_slip"`
	BetRef        *string     `json:"bet_ref,omitempty"`
	MatchDate     *string     `json:"match_date,omitempty"` // YYYY-MM-DD
	BetType       *string     `json:"bet_type,omitempty"`
	Odds          *float64    `json:"odds,omitempty"` // combined odds for the whole bet
	Stake         *float64    `json:"stake,omitempty"`
	ToReturn      *float64    `json:"to_return,omitempty"`
	Boost         *float64    `json:"boost,omitempty"`
	Selections    []Selection `json:"selections"`
	Metadata      Metadata    `json:"metadata"`
}

// Metadata carries processing diagnostics for one analysis.
type Metadata struct {
	ProcessingMS int64    `json:"processing_ms"`
	InputLength  int      `json:"input_length"`
	LineCount    int      `json:"line_count"`
	AnchorsFound int      `json:"anchors_found"`
	ParseErrors  []string `json:"parse_errors,omitempty"`
}
