package analysis

import (
	"math"
	"slices"
	"testing"

	"hiveguard/internal/domain/models"
)

func testPatterns() []models.ScamPattern {
	return []models.ScamPattern{
		{
			Name:           "Urgency/Pressure",
			Keywords:       []string{"urgently", "immediately", "right now", "last chance"},
			Severity:       "Medium",
			IndicatorScore: 0.6,
		},
		{
			Name:           "Account Compromise",
			Keywords:       []string{"compromised", "UPI", "verify", "suspicious activity"},
			Severity:       "High",
			IndicatorScore: 0.9,
		},
		{
			Name:           "Phishing Links",
			Keywords:       []string{"http://", "https://", "click"},
			Severity:       "Critical",
			IndicatorScore: 0.95,
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDetectPatternsUPIScenario(t *testing.T) {
	t.Parallel()

	detected, scores := DetectPatterns("Your account has been compromised, verify your UPI ID urgently", testPatterns())

	want := []string{"Urgency/Pressure", "Account Compromise"}
	if !slices.Equal(detected, want) {
		t.Fatalf("expected %v, got %v", want, detected)
	}

	// 3 of 4 keywords
	if got := scores["Account Compromise"]; !almostEqual(got, 0.75*0.9) {
		t.Fatalf("unexpected Account Compromise score: %v", got)
	}
	// 1 of 4 keywords
	if got := scores["Urgency/Pressure"]; !almostEqual(got, 0.25*0.6) {
		t.Fatalf("unexpected Urgency/Pressure score: %v", got)
	}
	if _, ok := scores["Phishing Links"]; ok {
		t.Fatal("Phishing Links should not be scored")
	}
}

func TestDetectPatternsKeepsCatalogOrder(t *testing.T) {
	t.Parallel()

	// Phishing Links matches every keyword, Urgency/Pressure only one, but
	// detection order follows the catalog.
	detected, _ := DetectPatterns("click http://x.io https://y.io right now", testPatterns())

	want := []string{"Urgency/Pressure", "Phishing Links"}
	if !slices.Equal(detected, want) {
		t.Fatalf("expected %v, got %v", want, detected)
	}
}

func TestDetectPatternsEmptyKeywords(t *testing.T) {
	t.Parallel()

	patterns := []models.ScamPattern{
		{Name: "Empty", IndicatorScore: 1},
		{Name: "Nil", Keywords: nil, IndicatorScore: 1},
	}

	detected, scores := DetectPatterns("anything at all", patterns)
	if len(detected) != 0 || len(scores) != 0 {
		t.Fatalf("expected nothing detected, got %v %v", detected, scores)
	}
}

func TestDetectPatternsTwinPatterns(t *testing.T) {
	t.Parallel()

	keywords := []string{"lottery", "prize"}
	patterns := []models.ScamPattern{
		{Name: "Lottery A", Keywords: keywords, IndicatorScore: 0.4},
		{Name: "Lottery B", Keywords: keywords, IndicatorScore: 0.8},
	}

	detected, scores := DetectPatterns("You won the lottery prize", patterns)
	if len(detected) != 2 {
		t.Fatalf("expected both patterns, got %v", detected)
	}
	if !almostEqual(scores["Lottery A"], 0.4) || !almostEqual(scores["Lottery B"], 0.8) {
		t.Fatalf("unexpected scores: %v", scores)
	}
}

func TestDetectPatternsSubstringContainment(t *testing.T) {
	t.Parallel()

	patterns := []models.ScamPattern{
		{Name: "Payment", Keywords: []string{"pay"}, IndicatorScore: 0.5},
	}

	detected, _ := DetectPatterns("The REPAYMENT is overdue", patterns)
	if len(detected) != 1 {
		t.Fatalf("expected substring match inside a longer word, got %v", detected)
	}
}

func TestDetectPatternsEmptyTranscript(t *testing.T) {
	t.Parallel()

	detected, scores := DetectPatterns("", testPatterns())
	if detected == nil || scores == nil {
		t.Fatal("expected non-nil empty results")
	}
	if len(detected) != 0 || len(scores) != 0 {
		t.Fatalf("expected nothing detected, got %v", detected)
	}
}
