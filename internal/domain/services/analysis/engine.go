// Package analysis is the rule-based scam-call engine: keyword extraction,
// pattern detection, additive risk scoring and scammer registry correlation.
//
// An Engine is built once at startup over an immutable pattern catalog and
// scammer registry. Every method is a pure function of its arguments and that
// reference data, so one Engine serves concurrent requests without locking.
package analysis

import (
	"math"
	"slices"
	"time"

	"hiveguard/internal/domain/models"
	"hiveguard/pkg/logger"
)

// MaxConfidence caps the confidence derived from the risk score
const MaxConfidence = 0.95

// Engine analyzes call transcripts against a pattern catalog and scammer registry
type Engine struct {
	patterns []models.ScamPattern
	triggers []models.RiskTrigger
	registry *Registry
	logger   *logger.Logger
	now      func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used to stamp results and reports
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over copies of catalog and scammers
func NewEngine(catalog models.PatternCatalog, scammers []models.ScammerRecord, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		patterns: models.ClonePatterns(catalog.Patterns),
		triggers: slices.Clone(catalog.Triggers),
		registry: NewRegistry(scammers),
		logger:   log.WithComponent("analysis-engine"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger.Info().
		Int("patterns", len(e.patterns)).
		Int("triggers", len(e.triggers)).
		Int("scammers", e.registry.Len()).
		Msg("analysis engine ready")

	return e
}

// Patterns returns a copy of the pattern catalog in catalog order
func (e *Engine) Patterns() []models.ScamPattern {
	return models.ClonePatterns(e.patterns)
}

// Registry returns the read-only scammer registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// DetectPatterns matches transcript against the engine's catalog
func (e *Engine) DetectPatterns(transcript string) ([]string, map[string]float64) {
	return DetectPatterns(transcript, e.patterns)
}

// CalculateRiskScore scores detected pattern names plus the engine's risk triggers
func (e *Engine) CalculateRiskScore(transcript string, detected []string) float64 {
	return CalculateRiskScore(transcript, detected, e.triggers)
}

// GetScammer looks up a scammer by exact ID
func (e *Engine) GetScammer(id string) (*models.ScammerRecord, bool) {
	return e.registry.Get(id)
}

// ListScammers returns the registry ordered by risk level
func (e *Engine) ListScammers() []models.ScammerRecord {
	return e.registry.List()
}

// SearchScammers filters the registry
func (e *Engine) SearchScammers(q ScammerQuery) []models.ScammerRecord {
	return e.registry.Search(q)
}

// Alerts returns alerts for the Critical and High scammers
func (e *Engine) Alerts() []models.ScammerAlert {
	return e.registry.Alerts()
}

// IntelligenceReport summarizes the registry as of now
func (e *Engine) IntelligenceReport() models.IntelligenceReport {
	return e.registry.Report(e.now())
}

// AnalyzeCall runs the full pipeline on transcript. An empty scammerID skips the
// registry lookup; an unknown one leaves ScammerMatch nil. Any string is accepted,
// including "".
func (e *Engine) AnalyzeCall(transcript, scammerID string) models.AnalysisResult {
	keywords := ExtractKeywords(transcript)
	detected, scores := e.DetectPatterns(transcript)
	riskScore := e.CalculateRiskScore(transcript, detected)

	result := models.AnalysisResult{
		Keywords:          keywords,
		DetectedPatterns:  detected,
		PatternScores:     scores,
		RiskScore:         riskScore,
		RiskLevel:         ClassifyRiskLevel(riskScore),
		Sentiment:         ExtractSentiment(transcript),
		Confidence:        math.Min(MaxConfidence, riskScore/MaxRiskScore),
		AnalysisTimestamp: e.now(),
	}

	if scammerID != "" {
		if match, ok := e.registry.Get(scammerID); ok {
			result.ScammerMatch = match
		} else {
			e.logger.Debug().Str("scammer_id", scammerID).Msg("scammer not in registry")
		}
	}

	return result
}
