package handlers

import (
	"encoding/json"
	"net/http"

	"hiveguard/internal/domain/services"
	"hiveguard/internal/grpc/healthcheck"
	"hiveguard/internal/streaming"
	"hiveguard/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Index     *IndexHandler
	Health    *HealthHandler
	Analysis  *AnalysisHandler
	Scammers  *ScammersHandler
	Patterns  *PatternsHandler
	Stats     *StatsHandler
	Streaming *StreamingHandler
}

// Dependencies holds dependencies for handlers. Checker, WSHub and EventBus
// may be nil.
type Dependencies struct {
	Analyzer *services.CallAnalyzer
	Checker  *healthcheck.Checker
	WSHub    *streaming.WebSocketHub
	EventBus *streaming.EventBus
	Version  string
	Logger   *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	return &Handlers{
		Index:     NewIndexHandler(deps.Version),
		Health:    NewHealthHandler(deps.Checker, deps.Version, deps.Logger),
		Analysis:  NewAnalysisHandler(deps.Analyzer, deps.Logger),
		Scammers:  NewScammersHandler(deps.Analyzer.Engine(), deps.Logger),
		Patterns:  NewPatternsHandler(deps.Analyzer.Engine(), deps.Logger),
		Stats:     NewStatsHandler(deps.Analyzer, deps.WSHub, deps.EventBus, deps.Logger),
		Streaming: NewStreamingHandler(deps.WSHub, deps.Logger),
	}
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
