package analysis

import (
	"strings"

	"hiveguard/internal/domain/models"
)

var (
	positiveWords = []string{"good", "great", "excellent", "thank", "thank you", "appreciate"}
	negativeWords = []string{"bad", "terrible", "wrong", "urgent", "immediately", "threat", "block", "close", "arrest"}
)

// ExtractSentiment compares how many negative and positive words appear in text.
// Each word counts at most once.
func ExtractSentiment(text string) models.Sentiment {
	lower := strings.ToLower(text)
	pos := countContained(lower, positiveWords)
	neg := countContained(lower, negativeWords)

	switch {
	case neg > pos:
		return models.SentimentAggressive
	case pos > neg:
		return models.SentimentPersuasive
	default:
		return models.SentimentNeutral
	}
}
