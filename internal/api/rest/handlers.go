package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/resolver"
	"github.com/fortuna/augur/internal/store/repository"
)

// maxAnalyzeBytes bounds the OCR text payload; slips are small.
const maxAnalyzeBytes = 64 * 1024

// Broadcaster pushes per-selection resolution updates to streaming
// clients. A nil Broadcaster disables streaming.
type Broadcaster interface {
	BroadcastResolutionUpdate(data []byte)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	analyzer    *analyzer.Analyzer
	resolver    *resolver.Resolver
	slips       *repository.SlipRepository
	broadcaster Broadcaster
}

// NewHandler creates a new handler
func NewHandler(slipAnalyzer *analyzer.Analyzer, res *resolver.Resolver, slips *repository.SlipRepository, broadcaster Broadcaster) *Handler {
	return &Handler{
		analyzer:    slipAnalyzer,
		resolver:    res,
		slips:       slips,
		broadcaster: broadcaster,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "augur",
		"version": "1.0.0",
	})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	SlipID   string                 `json:"slip_id,omitempty"`
	Analysis *analyzer.SlipAnalysis `json:"analysis"`
}

// AnalyzeSlip parses OCR text into a structured slip analysis and, when
// persistence is enabled, stores it.
func (h *Handler) AnalyzeSlip(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	analysis := h.analyzer.Analyze(req.Text)

	resp := analyzeResponse{Analysis: analysis}
	if h.slips != nil {
		slipID, err := h.slips.Insert(r.Context(), analysis)
		if err != nil {
			// Persistence is best-effort; the analysis is still good.
			respondJSON(w, http.StatusOK, resp)
			return
		}
		resp.SlipID = slipID
	}

	respondJSON(w, http.StatusOK, resp)
}

type resultsRequest struct {
	SlipID      string               `json:"slip_id,omitempty"`
	Selections  []analyzer.Selection `json:"selections"`
	MatchDate   string               `json:"match_date,omitempty"`
	Concurrency int                  `json:"concurrency,omitempty"`
}

type resultsResponse struct {
	Selections []resolver.EnrichedSelection `json:"selections"`
	Stats      resolver.Snapshot            `json:"stats"`
}

// resolutionUpdate is the streaming payload sent per resolved selection.
type resolutionUpdate struct {
	Index     int                        `json:"index"`
	Total     int                        `json:"total"`
	Selection resolver.EnrichedSelection `json:"selection"`
	Timestamp time.Time                  `json:"timestamp"`
}

// FetchResults resolves match outcomes for a batch of selections.
func (h *Handler) FetchResults(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if len(req.Selections) == 0 {
		respondError(w, http.StatusBadRequest, "No selections provided", nil)
		return
	}

	opts := &resolver.BatchOptions{
		Concurrency: req.Concurrency,
		MatchDate:   req.MatchDate,
	}
	if h.broadcaster != nil {
		total := len(req.Selections)
		opts.OnProgress = func(index int, enriched resolver.EnrichedSelection) {
			update := resolutionUpdate{
				Index:     index,
				Total:     total,
				Selection: enriched,
				Timestamp: time.Now().UTC(),
			}
			if data, err := json.Marshal(update); err == nil {
				h.broadcaster.BroadcastResolutionUpdate(data)
			}
		}
	}

	enriched := h.resolver.FetchAll(r.Context(), req.Selections, opts)

	if h.slips != nil && req.SlipID != "" {
		// Best-effort; resolution results go back to the caller either way.
		_ = h.slips.SetResolved(r.Context(), req.SlipID, enriched)
	}

	respondJSON(w, http.StatusOK, resultsResponse{
		Selections: enriched,
		Stats:      h.resolver.Stats().Snapshot(),
	})
}

// ListSlips returns recently stored slip analyses.
func (h *Handler) ListSlips(w http.ResponseWriter, r *http.Request) {
	if h.slips == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence is not enabled", nil)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	slips, err := h.slips.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list slips", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"slips": slips,
		"count": len(slips),
	})
}

// GetSlip returns one stored slip analysis by ID.
func (h *Handler) GetSlip(w http.ResponseWriter, r *http.Request) {
	if h.slips == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence is not enabled", nil)
		return
	}

	slipID := mux.Vars(r)["slipID"]
	slip, err := h.slips.GetByID(r.Context(), slipID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Slip not found", err)
		return
	}

	respondJSON(w, http.StatusOK, slip)
}

// GetStats returns resolver run statistics.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.resolver.Stats().Snapshot())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
