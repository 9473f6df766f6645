package analysis

import (
	"strings"

	"hiveguard/internal/domain/models"
)

// DetectPatterns reports every pattern with at least one keyword contained in the
// transcript, in catalog order. A pattern's score is the fraction of its keywords
// found times its indicator score. Containment is plain substring matching, so
// "upi" also matches inside "upiid".
func DetectPatterns(transcript string, patterns []models.ScamPattern) ([]string, map[string]float64) {
	detected := make([]string, 0)
	scores := make(map[string]float64)

	text := strings.ToLower(transcript)

	for _, pattern := range patterns {
		if len(pattern.Keywords) == 0 {
			continue
		}

		matchCount := countContained(text, pattern.Keywords)
		if matchCount == 0 {
			continue
		}

		detected = append(detected, pattern.Name)
		scores[pattern.Name] = float64(matchCount) / float64(len(pattern.Keywords)) * pattern.IndicatorScore
	}

	return detected, scores
}

// countContained counts keywords contained in the already lowercased text
func countContained(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
