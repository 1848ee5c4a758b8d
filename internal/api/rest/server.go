package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/resolver"
	"github.com/fortuna/augur/internal/store/repository"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. slips may be nil when the
// service runs without persistence.
func NewServer(port string, slipAnalyzer *analyzer.Analyzer, res *resolver.Resolver, slips *repository.SlipRepository, broadcaster Broadcaster) *Server {
	handler := NewHandler(slipAnalyzer, res, slips, broadcaster)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Slip analysis
	api.HandleFunc("/analyze", handler.AnalyzeSlip).Methods("POST")
	api.HandleFunc("/results", handler.FetchResults).Methods("POST")

	// Stored slips
	api.HandleFunc("/slips", handler.ListSlips).Methods("GET")
	api.HandleFunc("/slips/{slipID}", handler.GetSlip).Methods("GET")

	// Observability
	api.HandleFunc("/stats", handler.GetStats).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
