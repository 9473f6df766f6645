package services

import (
	"context"
	"sync"

	"hiveguard/internal/domain/models"
	"hiveguard/internal/domain/services/analysis"
	"hiveguard/internal/metrics"
	"hiveguard/pkg/logger"
)

// AnalysisRecorder persists analysis counters across restarts and replicas
type AnalysisRecorder interface {
	// RecordAnalysis counts one analyzed call at the given level
	RecordAnalysis(ctx context.Context, level models.RiskLevel) error

	// GetAnalysisStats returns the persisted counters
	GetAnalysisStats(ctx context.Context) (models.AnalysisStats, error)
}

// EventPublisher defines the interface for publishing call events
type EventPublisher interface {
	// PublishCallAnalyzed publishes an event for an analyzed call
	PublishCallAnalyzed(ctx context.Context, result models.AnalysisResult) error
}

// Stats sources
const (
	StatsSourceMemory = "memory"
	StatsSourceRedis  = "redis"
)

// CallAnalyzer runs the analysis engine and handles everything around a
// verdict: metrics, counters and alert events. None of these side effects can
// change or fail the verdict itself.
type CallAnalyzer struct {
	engine    *analysis.Engine
	metrics   *metrics.Metrics
	threshold models.RiskLevel
	logger    *logger.Logger

	mu        sync.RWMutex
	recorder  AnalysisRecorder
	publisher EventPublisher
	total     int64
	byLevel   map[string]int64
}

// NewCallAnalyzer creates a new CallAnalyzer. m may be nil. Calls at or above
// threshold, or matching a registered scammer, are published once a
// publisher is set.
func NewCallAnalyzer(engine *analysis.Engine, m *metrics.Metrics, threshold models.RiskLevel, log *logger.Logger) *CallAnalyzer {
	if threshold == "" {
		threshold = models.RiskLevelHigh
	}
	return &CallAnalyzer{
		engine:    engine,
		metrics:   m,
		threshold: threshold,
		logger:    log.WithComponent("call-analyzer"),
		byLevel:   make(map[string]int64),
	}
}

// SetRecorder sets the persistent counter store
func (a *CallAnalyzer) SetRecorder(recorder AnalysisRecorder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorder = recorder
	a.logger.Info().Msg("analysis recorder configured")
}

// SetEventPublisher sets the event publisher for high-risk calls
func (a *CallAnalyzer) SetEventPublisher(publisher EventPublisher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publisher = publisher
	a.logger.Info().Str("threshold", string(a.threshold)).Msg("event publisher configured")
}

// Engine returns the underlying analysis engine
func (a *CallAnalyzer) Engine() *analysis.Engine {
	return a.engine
}

// Threshold returns the lowest risk level that is published
func (a *CallAnalyzer) Threshold() models.RiskLevel {
	return a.threshold
}

// Analyze produces the full verdict for a transcript
func (a *CallAnalyzer) Analyze(ctx context.Context, transcript, scammerID string) models.AnalysisResult {
	result := a.engine.AnalyzeCall(transcript, scammerID)

	a.mu.Lock()
	a.total++
	a.byLevel[string(result.RiskLevel)]++
	recorder, publisher := a.recorder, a.publisher
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.ObserveAnalysis(result)
	}

	if recorder != nil {
		if err := recorder.RecordAnalysis(ctx, result.RiskLevel); err != nil {
			a.logger.Warn().Err(err).Msg("failed to record analysis")
			a.recordError("recorder")
		}
	}

	if publisher != nil && a.shouldPublish(result) {
		err := publisher.PublishCallAnalyzed(ctx, result)
		if a.metrics != nil {
			a.metrics.ObservePublish(err)
		}
		if err != nil {
			a.logger.Warn().Err(err).Str("risk_level", string(result.RiskLevel)).Msg("failed to publish call event")
		}
	}

	a.logger.Debug().
		Float64("risk_score", result.RiskScore).
		Str("risk_level", string(result.RiskLevel)).
		Int("patterns", len(result.DetectedPatterns)).
		Bool("scammer_match", result.ScammerMatch != nil).
		Msg("call analyzed")

	return result
}

func (a *CallAnalyzer) shouldPublish(result models.AnalysisResult) bool {
	return result.ScammerMatch != nil || result.RiskLevel.AtLeast(a.threshold)
}

// Stats returns persisted counters when a recorder is configured and
// reachable, and this process's counters otherwise.
func (a *CallAnalyzer) Stats(ctx context.Context) models.AnalysisStats {
	a.mu.RLock()
	recorder := a.recorder
	a.mu.RUnlock()

	if recorder != nil {
		stats, err := recorder.GetAnalysisStats(ctx)
		if err == nil {
			stats.Source = StatsSourceRedis
			return stats
		}
		a.logger.Warn().Err(err).Msg("persisted stats unavailable, using process counters")
		a.recordError("recorder")
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	byLevel := make(map[string]int64, len(a.byLevel))
	for level, n := range a.byLevel {
		byLevel[level] = n
	}
	return models.AnalysisStats{
		TotalAnalyses: a.total,
		ByRiskLevel:   byLevel,
		Source:        StatsSourceMemory,
	}
}

func (a *CallAnalyzer) recordError(errorType string) {
	if a.metrics != nil {
		a.metrics.RecordError("call-analyzer", errorType)
	}
}
