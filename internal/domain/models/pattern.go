package models

import "slices"

// ScamPattern is a named cluster of keywords indicating one scam tactic
type ScamPattern struct {
	Name           string   `json:"name" yaml:"name"`
	Keywords       []string `json:"keywords" yaml:"keywords"`
	Severity       string   `json:"severity,omitempty" yaml:"severity,omitempty"` // informational only
	IndicatorScore float64  `json:"indicatorScore" yaml:"indicatorScore"`         // 0-1 base weight
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// RiskTrigger is a single keyword that adds weight*5 to the risk score when present
type RiskTrigger struct {
	Keyword string  `json:"keyword" yaml:"keyword"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// PatternCatalog is the read-only pattern reference data. Patterns keep file order.
type PatternCatalog struct {
	Patterns []ScamPattern `json:"scam_patterns" yaml:"scam_patterns"`
	Triggers []RiskTrigger `json:"risk_triggers" yaml:"risk_triggers"`
}

// Defaults applied at the load boundary
const (
	DefaultIndicatorScore = 0.8
	DefaultTriggerWeight  = 0.5
)

// Clone returns a copy of p that shares no slices with it
func (p ScamPattern) Clone() ScamPattern {
	p.Keywords = slices.Clone(p.Keywords)
	return p
}

// ClonePatterns deep-copies a pattern list
func ClonePatterns(patterns []ScamPattern) []ScamPattern {
	if patterns == nil {
		return nil
	}
	out := make([]ScamPattern, len(patterns))
	for i, p := range patterns {
		out[i] = p.Clone()
	}
	return out
}
