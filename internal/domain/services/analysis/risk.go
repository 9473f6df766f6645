package analysis

import (
	"strings"

	"hiveguard/internal/domain/models"
)

// MaxRiskScore is the upper clamp of the additive risk model
const MaxRiskScore = 100.0

// patternWeights is keyed by exact pattern name. It is independent of the
// per-pattern scores produced by DetectPatterns.
var patternWeights = map[string]float64{
	"Phishing Links":     30,
	"Credential Theft":   28,
	"Account Compromise": 25,
	"Legal Threat":       20,
	"Financial Threat":   18,
	"Urgency/Pressure":   15,
}

const defaultPatternWeight = 10.0

// triggerMultiplier scales a trigger weight in [0,1] into risk points
const triggerMultiplier = 5.0

// PatternWeight returns the risk points contributed by a detected pattern name
func PatternWeight(name string) float64 {
	if w, ok := patternWeights[name]; ok {
		return w
	}
	return defaultPatternWeight
}

// CalculateRiskScore sums pattern weights for the detected names and weight*5 for
// every trigger keyword contained in the transcript, clamped to MaxRiskScore.
func CalculateRiskScore(transcript string, detected []string, triggers []models.RiskTrigger) float64 {
	score := 0.0

	for _, name := range detected {
		score += PatternWeight(name)
	}

	text := strings.ToLower(transcript)
	for _, trigger := range triggers {
		if trigger.Keyword == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(trigger.Keyword)) {
			score += trigger.Weight * triggerMultiplier
		}
	}

	if score > MaxRiskScore {
		score = MaxRiskScore
	}
	return score
}

// ClassifyRiskLevel maps a score onto a level; lower bounds are inclusive.
func ClassifyRiskLevel(score float64) models.RiskLevel {
	switch {
	case score >= 80:
		return models.RiskLevelCritical
	case score >= 60:
		return models.RiskLevelHigh
	case score >= 40:
		return models.RiskLevelMedium
	case score >= 20:
		return models.RiskLevelLow
	default:
		return models.RiskLevelMinimal
	}
}
