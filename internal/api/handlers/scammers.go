package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hiveguard/internal/domain/models"
	"hiveguard/internal/domain/services/analysis"
	"hiveguard/pkg/logger"
)

// ScammersHandler serves the read-only scammer registry
type ScammersHandler struct {
	engine *analysis.Engine
	logger *logger.Logger
}

// NewScammersHandler creates a new ScammersHandler
func NewScammersHandler(engine *analysis.Engine, log *logger.Logger) *ScammersHandler {
	return &ScammersHandler{
		engine: engine,
		logger: log.WithComponent("scammers-handler"),
	}
}

// ScammerListResponse is the response for registry listings
type ScammerListResponse struct {
	Success  bool                   `json:"success"`
	Scammers []models.ScammerRecord `json:"scammers"`
	Total    int                    `json:"total"`
}

// ScammerResponse is the response for a single registry entry
type ScammerResponse struct {
	Success bool                  `json:"success"`
	Scammer *models.ScammerRecord `json:"scammer"`
}

// ReportResponse wraps the intelligence report
type ReportResponse struct {
	Success bool                      `json:"success"`
	Report  models.IntelligenceReport `json:"report"`
}

// AlertsResponse lists alerts derived from the registry
type AlertsResponse struct {
	Success bool                  `json:"success"`
	Alerts  []models.ScammerAlert `json:"alerts"`
	Total   int                   `json:"total"`
}

// List handles GET /api/scammers
func (h *ScammersHandler) List(w http.ResponseWriter, r *http.Request) {
	scammers := h.engine.ListScammers()
	writeJSON(w, http.StatusOK, ScammerListResponse{Success: true, Scammers: scammers, Total: len(scammers)})
}

// Search handles GET /api/scammers/search?q=&scam_type=&risk_level=
func (h *ScammersHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scammers := h.engine.SearchScammers(analysis.ScammerQuery{
		Text:      q.Get("q"),
		ScamType:  q.Get("scam_type"),
		RiskLevel: models.RiskLevel(q.Get("risk_level")),
	})
	writeJSON(w, http.StatusOK, ScammerListResponse{Success: true, Scammers: scammers, Total: len(scammers)})
}

// Get handles GET /api/scammers/{id}
func (h *ScammersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	scammer, ok := h.engine.GetScammer(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Scammer not found")
		return
	}

	writeJSON(w, http.StatusOK, ScammerResponse{Success: true, Scammer: scammer})
}

// IntelligenceReport handles GET /api/intelligence-report
func (h *ScammersHandler) IntelligenceReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ReportResponse{Success: true, Report: h.engine.IntelligenceReport()})
}

// Alerts handles GET /api/alerts
func (h *ScammersHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.Alerts()
	writeJSON(w, http.StatusOK, AlertsResponse{Success: true, Alerts: alerts, Total: len(alerts)})
}
