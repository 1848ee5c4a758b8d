package store

import (
	"encoding/json"
	"time"
)

// StoredSlip is one persisted slip analysis, optionally with the resolved
// outcomes of its selections. Analysis and Resolved hold the JSON forms of
// analyzer.SlipAnalysis and []resolver.EnrichedSelection respectively;
// keeping them as documents means schema changes in the parser never need
// a table migration.
type StoredSlip struct {
	SlipID     string          `json:"slip_id" db:"slip_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
	Analysis   json.RawMessage `json:"analysis" db:"analysis"`
	Resolved   json.RawMessage `json:"resolved,omitempty" db:"resolved"`
}
