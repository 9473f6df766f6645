package handlers

import (
	"net/http"

	"hiveguard/internal/domain/models"
	"hiveguard/internal/domain/services/analysis"
	"hiveguard/pkg/logger"
)

// PatternsHandler serves the pattern catalog
type PatternsHandler struct {
	engine *analysis.Engine
	logger *logger.Logger
}

// NewPatternsHandler creates a new PatternsHandler
func NewPatternsHandler(engine *analysis.Engine, log *logger.Logger) *PatternsHandler {
	return &PatternsHandler{
		engine: engine,
		logger: log.WithComponent("patterns-handler"),
	}
}

// PatternListResponse lists the loaded scam patterns
type PatternListResponse struct {
	Success  bool                 `json:"success"`
	Patterns []models.ScamPattern `json:"patterns"`
	Total    int                  `json:"total"`
}

// List handles GET /api/scam-patterns
func (h *PatternsHandler) List(w http.ResponseWriter, r *http.Request) {
	patterns := h.engine.Patterns()
	writeJSON(w, http.StatusOK, PatternListResponse{Success: true, Patterns: patterns, Total: len(patterns)})
}
