package analysis

import (
	"slices"
	"sync"
	"testing"
	"time"

	"hiveguard/internal/domain/models"
	"hiveguard/pkg/logger"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestEngine() *Engine {
	catalog := models.PatternCatalog{
		Patterns: testPatterns(),
		Triggers: []models.RiskTrigger{
			{Keyword: "upi", Weight: 0.9},
			{Keyword: "otp", Weight: 1.0},
		},
	}
	return NewEngine(catalog, testScammers(), logger.NewNop(), WithClock(func() time.Time { return fixedNow }))
}

func TestAnalyzeCallEmptyTranscript(t *testing.T) {
	t.Parallel()

	result := newTestEngine().AnalyzeCall("", "")

	if len(result.Keywords) != 0 || result.Keywords == nil {
		t.Fatalf("expected empty keywords, got %v", result.Keywords)
	}
	if len(result.DetectedPatterns) != 0 {
		t.Fatalf("expected no patterns, got %v", result.DetectedPatterns)
	}
	if result.RiskScore != 0 || result.RiskLevel != models.RiskLevelMinimal {
		t.Fatalf("expected Minimal 0, got %s %v", result.RiskLevel, result.RiskScore)
	}
	if result.Sentiment != models.SentimentNeutral {
		t.Fatalf("expected Neutral, got %s", result.Sentiment)
	}
	if result.Confidence != 0 || result.ScammerMatch != nil {
		t.Fatalf("unexpected confidence/match: %v %v", result.Confidence, result.ScammerMatch)
	}
	if !result.AnalysisTimestamp.Equal(fixedNow) {
		t.Fatalf("unexpected timestamp: %v", result.AnalysisTimestamp)
	}
}

func TestAnalyzeCallUPIScenario(t *testing.T) {
	t.Parallel()

	result := newTestEngine().AnalyzeCall("Your account has been compromised, verify your UPI ID urgently", "")

	if !slices.Contains(result.DetectedPatterns, "Account Compromise") {
		t.Fatalf("expected Account Compromise, got %v", result.DetectedPatterns)
	}
	// Urgency/Pressure 15 + Account Compromise 25 + upi trigger 4.5
	if !almostEqual(result.RiskScore, 44.5) {
		t.Fatalf("expected 44.5, got %v", result.RiskScore)
	}
	if result.RiskLevel != models.RiskLevelMedium {
		t.Fatalf("expected Medium, got %s", result.RiskLevel)
	}
	if !almostEqual(result.Confidence, 0.445) {
		t.Fatalf("expected confidence 0.445, got %v", result.Confidence)
	}
	if !slices.Contains(result.Keywords, "compromised") {
		t.Fatalf("expected keyword compromised, got %v", result.Keywords)
	}
}

func TestAnalyzeCallConfidenceCap(t *testing.T) {
	t.Parallel()

	var patterns []models.ScamPattern
	for _, name := range []string{"Phishing Links", "Credential Theft", "Account Compromise", "Legal Threat"} {
		patterns = append(patterns, models.ScamPattern{Name: name, Keywords: []string{"refund"}, IndicatorScore: 1})
	}
	e := NewEngine(models.PatternCatalog{Patterns: patterns}, nil, logger.NewNop())

	result := e.AnalyzeCall("Claim your refund", "")
	if result.RiskScore != MaxRiskScore {
		t.Fatalf("expected clamped score, got %v", result.RiskScore)
	}
	if result.RiskLevel != models.RiskLevelCritical {
		t.Fatalf("expected Critical, got %s", result.RiskLevel)
	}
	if result.Confidence != MaxConfidence {
		t.Fatalf("expected confidence %v, got %v", MaxConfidence, result.Confidence)
	}
}

func TestAnalyzeCallScammerMatch(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	result := e.AnalyzeCall("hello", "s2")
	if result.ScammerMatch == nil || result.ScammerMatch.Name != "Critical One" {
		t.Fatalf("expected match for s2, got %+v", result.ScammerMatch)
	}

	result = e.AnalyzeCall("hello", "nonexistent")
	if result.ScammerMatch != nil {
		t.Fatalf("expected no match, got %+v", result.ScammerMatch)
	}
}

func TestEngineGetScammerMiss(t *testing.T) {
	t.Parallel()

	if rec, ok := newTestEngine().GetScammer("nonexistent"); ok || rec != nil {
		t.Fatalf("expected miss, got %+v", rec)
	}
}

func TestEngineEmptyReferenceData(t *testing.T) {
	t.Parallel()

	e := NewEngine(models.PatternCatalog{}, nil, logger.NewNop())

	result := e.AnalyzeCall("Your account has been compromised, pay now", "x")
	if len(result.DetectedPatterns) != 0 || result.RiskScore != 0 {
		t.Fatalf("empty catalog must detect nothing, got %+v", result)
	}
	if len(e.ListScammers()) != 0 {
		t.Fatal("expected empty registry")
	}
	if report := e.IntelligenceReport(); report.TotalScammersTracked != 0 || report.AverageSuccessRate != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestEnginePatternsIsCopy(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	p := e.Patterns()
	p[0].Name = "mutated"
	p[1].Keywords[0] = "zzz"

	if e.Patterns()[0].Name == "mutated" {
		t.Fatal("engine catalog mutated through Patterns()")
	}
	if e.Patterns()[1].Keywords[0] != "compromised" {
		t.Fatalf("engine keywords mutated through Patterns(): %v", e.Patterns()[1].Keywords)
	}
	if detected, _ := e.DetectPatterns("your account was compromised"); !slices.Contains(detected, "Account Compromise") {
		t.Fatalf("expected Account Compromise, got %v", detected)
	}
}

func TestEngineCopiesCatalogAtConstruction(t *testing.T) {
	t.Parallel()

	catalog := models.PatternCatalog{Patterns: testPatterns()}
	scammers := testScammers()
	e := NewEngine(catalog, scammers, logger.NewNop())

	catalog.Patterns[1].Keywords[0] = "caller"
	scammers[1].KnownPatterns[0] = "caller"

	if got := e.Patterns()[1].Keywords[0]; got != "compromised" {
		t.Fatalf("engine keyword changed with caller catalog: %q", got)
	}
	rec, _ := e.GetScammer("s2")
	if rec.KnownPatterns[0] != "Account Compromise" {
		t.Fatalf("registry changed with caller records: %v", rec.KnownPatterns)
	}
}

func TestAnalyzeCallScammerMatchIsCopy(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	result := e.AnalyzeCall("hello", "s2")
	result.ScammerMatch.KnownPatterns[0] = "HACKED"

	again := e.AnalyzeCall("hello", "s2")
	if again.ScammerMatch.KnownPatterns[0] != "Account Compromise" {
		t.Fatalf("registry mutated through scammer match: %v", again.ScammerMatch.KnownPatterns)
	}
}

func TestAnalyzeCallConcurrent(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	want := e.AnalyzeCall("verify your UPI now, click https://x.in", "s3")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := e.AnalyzeCall("verify your UPI now, click https://x.in", "s3")
			if got.RiskScore != want.RiskScore || !slices.Equal(got.DetectedPatterns, want.DetectedPatterns) {
				t.Errorf("concurrent result differs: %+v", got)
			}
		}()
	}
	wg.Wait()
}
