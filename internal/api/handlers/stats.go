package handlers

import (
	"net/http"

	"hiveguard/internal/domain/models"
	"hiveguard/internal/domain/services"
	"hiveguard/internal/streaming"
	"hiveguard/pkg/logger"
)

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	analyzer *services.CallAnalyzer
	wsHub    *streaming.WebSocketHub
	eventBus *streaming.EventBus
	logger   *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(analyzer *services.CallAnalyzer, wsHub *streaming.WebSocketHub, eventBus *streaming.EventBus, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		analyzer: analyzer,
		wsHub:    wsHub,
		eventBus: eventBus,
		logger:   log.WithComponent("stats"),
	}
}

// StatsResponse is the response for GET /api/stats
type StatsResponse struct {
	Success          bool                 `json:"success"`
	Analyses         models.AnalysisStats `json:"analyses"`
	PatternsLoaded   int                  `json:"patterns_loaded"`
	ScammersTracked  int                  `json:"scammers_tracked"`
	AlertThreshold   models.RiskLevel     `json:"alert_threshold"`
	WebSocketClients int                  `json:"websocket_clients"`
	BusSubscribers   int                  `json:"event_bus_subscribers"`
}

// Get handles GET /api/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	engine := h.analyzer.Engine()

	resp := StatsResponse{
		Success:         true,
		Analyses:        h.analyzer.Stats(r.Context()),
		PatternsLoaded:  len(engine.Patterns()),
		ScammersTracked: engine.Registry().Len(),
		AlertThreshold:  h.analyzer.Threshold(),
	}
	if h.wsHub != nil {
		resp.WebSocketClients = h.wsHub.ClientCount()
	}
	if h.eventBus != nil {
		resp.BusSubscribers = h.eventBus.SubscriberCount()
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}
