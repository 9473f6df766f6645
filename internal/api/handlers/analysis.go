package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hiveguard/internal/domain/models"
	"hiveguard/internal/domain/services"
	"hiveguard/internal/domain/services/analysis"
	"hiveguard/pkg/logger"
)

// maxBodyBytes bounds a transcript request body
const maxBodyBytes = 1 << 20

// AnalysisHandler handles the transcript analysis endpoints
type AnalysisHandler struct {
	analyzer *services.CallAnalyzer
	engine   *analysis.Engine
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analyzer *services.CallAnalyzer, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		engine:   analyzer.Engine(),
		logger:   log.WithComponent("analysis-handler"),
	}
}

// AnalyzeCallRequest is the request body for POST /api/analyze-call
type AnalyzeCallRequest struct {
	Transcript string `json:"transcript"`
	ScammerID  string `json:"scammer_id,omitempty"`
}

// AnalyzeCallResponse wraps a full verdict
type AnalyzeCallResponse struct {
	Success  bool                  `json:"success"`
	Analysis models.AnalysisResult `json:"analysis"`
}

// TranscriptRequest is the request body for the single-step transcript endpoints
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// TextRequest is the request body for keyword and sentiment extraction
type TextRequest struct {
	Text string `json:"text"`
}

// KeywordsResponse is the response for POST /api/extract-keywords
type KeywordsResponse struct {
	Success  bool     `json:"success"`
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
}

// PatternsDetectedResponse is the response for POST /api/detect-patterns
type PatternsDetectedResponse struct {
	Success       bool               `json:"success"`
	Patterns      []string           `json:"patterns"`
	PatternScores map[string]float64 `json:"pattern_scores"`
	PatternCount  int                `json:"pattern_count"`
}

// RiskResponse is the response for POST /api/calculate-risk
type RiskResponse struct {
	Success          bool             `json:"success"`
	RiskScore        float64          `json:"risk_score"`
	RiskLevel        models.RiskLevel `json:"risk_level"`
	DetectedPatterns []string         `json:"detected_patterns"`
}

// SentimentResponse is the response for POST /api/sentiment-analysis
type SentimentResponse struct {
	Success   bool             `json:"success"`
	Sentiment models.Sentiment `json:"sentiment"`
}

const (
	msgTranscriptRequired = "Transcript is required"
	msgTextRequired       = "Text is required"
)

// AnalyzeCall handles POST /api/analyze-call
func (h *AnalysisHandler) AnalyzeCall(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeCallRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, msgTranscriptRequired)
		return
	}

	result := h.analyzer.Analyze(r.Context(), req.Transcript, req.ScammerID)

	h.logger.Info().
		Float64("risk_score", result.RiskScore).
		Str("risk_level", string(result.RiskLevel)).
		Int("patterns", len(result.DetectedPatterns)).
		Bool("scammer_match", result.ScammerMatch != nil).
		Msg("call analyzed")

	writeJSON(w, http.StatusOK, AnalyzeCallResponse{Success: true, Analysis: result})
}

// ExtractKeywords handles POST /api/extract-keywords
func (h *AnalysisHandler) ExtractKeywords(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, msgTextRequired)
		return
	}

	keywords := analysis.ExtractKeywords(req.Text)
	writeJSON(w, http.StatusOK, KeywordsResponse{Success: true, Keywords: keywords, Count: len(keywords)})
}

// DetectPatterns handles POST /api/detect-patterns
func (h *AnalysisHandler) DetectPatterns(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, msgTranscriptRequired)
		return
	}

	detected, scores := h.engine.DetectPatterns(req.Transcript)
	writeJSON(w, http.StatusOK, PatternsDetectedResponse{
		Success:       true,
		Patterns:      detected,
		PatternScores: scores,
		PatternCount:  len(detected),
	})
}

// CalculateRisk handles POST /api/calculate-risk
func (h *AnalysisHandler) CalculateRisk(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, msgTranscriptRequired)
		return
	}

	detected, _ := h.engine.DetectPatterns(req.Transcript)
	score := h.engine.CalculateRiskScore(req.Transcript, detected)
	writeJSON(w, http.StatusOK, RiskResponse{
		Success:          true,
		RiskScore:        score,
		RiskLevel:        analysis.ClassifyRiskLevel(score),
		DetectedPatterns: detected,
	})
}

// Sentiment handles POST /api/sentiment-analysis
func (h *AnalysisHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, msgTextRequired)
		return
	}

	writeJSON(w, http.StatusOK, SentimentResponse{Success: true, Sentiment: analysis.ExtractSentiment(req.Text)})
}

// decode reads a JSON body into dest and writes a 400 on failure
func (h *AnalysisHandler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
