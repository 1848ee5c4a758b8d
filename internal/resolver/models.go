package resolver

import "github.com/fortuna/augur/internal/analyzer"

// Selection outcomes relative to the market the bettor picked.
const (
	ResultWin     = "win"
	ResultLoss    = "loss"
	ResultDraw    = "draw"
	ResultPending = "pending"
	ResultUnknown = "unknown"
	ResultError   = "error"
)

// StatusNotFound marks a selection the whole source chain came up empty
// for. It is a valid terminal outcome, not an error.
const StatusNotFound = "not_found"

// EnrichedSelection is a parsed selection augmented with its resolution
// outcome. The embedded Selection is a copy; the caller's value is never
// aliased or mutated.
type EnrichedSelection struct {
	analyzer.Selection

	Result           string `json:"result"`                      // win | loss | draw | pending | unknown | error
	Status           string `json:"status,omitempty"`            // finished | live | scheduled | not_found
	Score            string `json:"score,omitempty"`             // "H-A"
	Source           string `json:"source,omitempty"`            // originating data source, "(cached)" suffixed on cache hits
	ResultConfidence string `json:"result_confidence,omitempty"` // very_high | high | medium | low
	ResponseTimeMS   int64  `json:"response_time_ms"`
	Error            string `json:"error,omitempty"`
}
