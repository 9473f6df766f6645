package streaming

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiveguard/internal/domain/models"
)

// EventType represents the type of call event
type EventType string

const (
	EventTypeCallAnalyzed EventType = "call_analyzed"
	EventTypeScammerMatch EventType = "scammer_match"
)

// CallEvent is published when an analyzed call reaches the alert threshold.
// The transcript itself is never published.
type CallEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	RiskScore        float64          `json:"risk_score"`
	RiskLevel        models.RiskLevel `json:"risk_level"`
	Confidence       float64          `json:"confidence"`
	Sentiment        models.Sentiment `json:"sentiment"`
	DetectedPatterns []string         `json:"detected_patterns"`
	Keywords         []string         `json:"keywords,omitempty"`

	ScammerID   string `json:"scammer_id,omitempty"`
	ScammerName string `json:"scammer_name,omitempty"`
	ScamType    string `json:"scam_type,omitempty"`
}

// NewCallEvent creates an event from an analysis result
func NewCallEvent(result models.AnalysisResult) *CallEvent {
	event := &CallEvent{
		ID:               uuid.New().String(),
		Type:             EventTypeCallAnalyzed,
		Timestamp:        result.AnalysisTimestamp,
		RiskScore:        result.RiskScore,
		RiskLevel:        result.RiskLevel,
		Confidence:       result.Confidence,
		Sentiment:        result.Sentiment,
		DetectedPatterns: result.DetectedPatterns,
		Keywords:         result.Keywords,
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if m := result.ScammerMatch; m != nil {
		event.Type = EventTypeScammerMatch
		event.ScammerID = m.ID
		event.ScammerName = m.Name
		event.ScamType = m.ScamType
	}

	return event
}

// Subject returns the NATS subject for the event:
// calls.<event_type>.<risk_level>, e.g. calls.call_analyzed.critical
func (e *CallEvent) Subject() string {
	level := strings.ToLower(string(e.RiskLevel))
	if level == "" {
		level = "unknown"
	}
	return "calls." + string(e.Type) + "." + level
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by risk level (empty = all)
	MinRiskLevel models.RiskLevel `json:"min_risk_level,omitempty"`

	// Filter by detected pattern names (empty = all)
	Patterns []string `json:"patterns,omitempty"`

	// Only events that matched a registry entry
	ScammerMatchOnly bool `json:"scammer_match_only,omitempty"`
}

// ParseSubscription decodes a client filter. The minimum risk level is matched
// case-insensitively and stored in canonical form; an unknown level is an error.
func ParseSubscription(data []byte) (*Subscription, error) {
	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("invalid subscription: %w", err)
	}
	if sub.MinRiskLevel != "" {
		level, ok := models.ParseRiskLevel(strings.TrimSpace(string(sub.MinRiskLevel)))
		if !ok {
			return nil, fmt.Errorf("unknown risk level %q", sub.MinRiskLevel)
		}
		sub.MinRiskLevel = level
	}
	return &sub, nil
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *CallEvent) bool {
	if s.MinRiskLevel != "" && !event.RiskLevel.AtLeast(s.MinRiskLevel) {
		return false
	}

	if len(s.Patterns) > 0 {
		found := false
		for _, p := range s.Patterns {
			if slices.Contains(event.DetectedPatterns, p) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if s.ScammerMatchOnly && event.ScammerID == "" {
		return false
	}

	return true
}
