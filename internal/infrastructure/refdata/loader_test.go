package refdata

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hiveguard/internal/domain/models"
	"hiveguard/pkg/logger"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const catalogJSON = `{
  "scam_patterns": [
    {"name": "Urgency/Pressure", "keywords": ["urgent", "  immediately ", ""], "severity": "Medium"},
    {"name": "Legal Threat", "keywords": ["police", "arrest"], "indicatorScore": 0.9},
    {"name": "", "keywords": ["orphan"]},
    {"name": "Clamped", "keywords": ["x"], "indicatorScore": 4}
  ],
  "risk_triggers": [
    {"keyword": "otp", "weight": 1.0},
    {"keyword": "gift card"},
    {"keyword": "   ", "weight": 0.7}
  ]
}`

func TestLoadCatalogJSON(t *testing.T) {
	t.Parallel()

	l := NewLoader(false, logger.NewNop())
	catalog, err := l.LoadCatalog(writeFile(t, "scam_patterns.json", catalogJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(catalog.Patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(catalog.Patterns))
	}

	urgency := catalog.Patterns[0]
	if urgency.IndicatorScore != models.DefaultIndicatorScore {
		t.Fatalf("expected default indicator score, got %v", urgency.IndicatorScore)
	}
	if len(urgency.Keywords) != 2 || urgency.Keywords[1] != "immediately" {
		t.Fatalf("expected trimmed keywords without blanks, got %q", urgency.Keywords)
	}
	if catalog.Patterns[1].IndicatorScore != 0.9 {
		t.Fatalf("expected 0.9, got %v", catalog.Patterns[1].IndicatorScore)
	}
	if catalog.Patterns[2].IndicatorScore != 1 {
		t.Fatalf("expected clamped score 1, got %v", catalog.Patterns[2].IndicatorScore)
	}

	if len(catalog.Triggers) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(catalog.Triggers))
	}
	if catalog.Triggers[1].Weight != models.DefaultTriggerWeight {
		t.Fatalf("expected default weight, got %v", catalog.Triggers[1].Weight)
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	t.Parallel()

	content := `
scam_patterns:
  - name: Phishing Links
    keywords: [click, link]
    indicatorScore: 0.7
risk_triggers:
  - keyword: upi
    weight: 0.9
`
	l := NewLoader(true, logger.NewNop())
	catalog, err := l.LoadCatalog(writeFile(t, "patterns.yaml", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Patterns) != 1 || catalog.Patterns[0].Name != "Phishing Links" || catalog.Patterns[0].IndicatorScore != 0.7 {
		t.Fatalf("unexpected patterns: %+v", catalog.Patterns)
	}
	if len(catalog.Triggers) != 1 || catalog.Triggers[0].Weight != 0.9 {
		t.Fatalf("unexpected triggers: %+v", catalog.Triggers)
	}
}

func TestLoadCatalogMissingFailsOpen(t *testing.T) {
	t.Parallel()

	l := NewLoader(false, logger.NewNop())
	catalog, err := l.LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
	if catalog.Patterns == nil || len(catalog.Patterns) != 0 || catalog.Triggers == nil {
		t.Fatalf("expected empty non-nil catalog, got %+v", catalog)
	}
}

func TestLoadCatalogStrict(t *testing.T) {
	t.Parallel()

	l := NewLoader(true, logger.NewNop())

	if _, err := l.LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := l.LoadCatalog(writeFile(t, "bad.json", "{not json")); err == nil {
		t.Fatal("expected error for malformed file")
	}
	_, err := l.LoadCatalog(writeFile(t, "patterns.json", catalogJSON))
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestLoadCatalogMalformedFailsOpen(t *testing.T) {
	t.Parallel()

	l := NewLoader(false, logger.NewNop())
	catalog, err := l.LoadCatalog(writeFile(t, "bad.json", "{not json"))
	if err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
	if len(catalog.Patterns) != 0 || len(catalog.Triggers) != 0 {
		t.Fatalf("expected empty catalog, got %+v", catalog)
	}
}

const scammersJSON = `[
  {"id": "SC001", "name": "Fake Bank Officer", "scamType": "Bank Fraud", "riskLevel": "critical",
   "reportCount": 45, "successRate": 0.3, "lastSeen": "2024-01-15T10:30:00", "knownPatterns": ["Account Compromise"]},
  {"id": "SC002", "name": "No Level", "reportCount": -3, "successRate": 1.7, "lastSeen": "2024-02-01T08:00:00Z"},
  {"id": "", "name": "Nameless"},
  {"id": "SC003", "name": "Odd Level", "riskLevel": "Severe", "lastSeen": "yesterday"}
]`

func TestLoadRegistryFromFile(t *testing.T) {
	t.Parallel()

	l := NewLoader(false, logger.NewNop())
	src := FileScammerSource{Path: writeFile(t, "scammers_db.json", scammersJSON)}

	records, err := l.LoadRegistry(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.RiskLevel != "critical" {
		t.Fatalf("expected risk level kept verbatim, got %q", first.RiskLevel)
	}
	if first.RiskLevel.Rank() != 4 {
		t.Fatalf("lowercase level must sort last, got rank %d", first.RiskLevel.Rank())
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if !first.LastSeen.Equal(want) {
		t.Fatalf("expected %v, got %v", want, first.LastSeen)
	}

	second := records[1]
	if second.RiskLevel != models.RiskLevelLow {
		t.Fatalf("missing level must default to Low, got %q", second.RiskLevel)
	}
	if second.ReportCount != 0 || second.SuccessRate != 1 {
		t.Fatalf("expected clamped values, got count=%d rate=%v", second.ReportCount, second.SuccessRate)
	}
	if second.KnownPatterns == nil {
		t.Fatal("expected non-nil known patterns")
	}

	third := records[2]
	if third.RiskLevel != "Severe" || !third.LastSeen.IsZero() {
		t.Fatalf("unexpected third record: %+v", third)
	}
}

func TestLoadRegistryYAML(t *testing.T) {
	t.Parallel()

	content := `
- id: SC010
  name: Lottery Caller
  scamType: Lottery
  riskLevel: High
  reportCount: 7
  successRate: 0.25
  lastSeen: "2024-03-01"
`
	l := NewLoader(true, logger.NewNop())
	records, err := l.LoadRegistry(context.Background(), FileScammerSource{Path: writeFile(t, "scammers.yml", content)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].RiskLevel != models.RiskLevelHigh || records[0].ReportCount != 7 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) LoadScammers(context.Context) ([]models.ScammerRecord, error) {
	return nil, errors.New("connection refused")
}

func TestLoadRegistrySourceFailure(t *testing.T) {
	t.Parallel()

	records, err := NewLoader(false, logger.NewNop()).LoadRegistry(context.Background(), failingSource{})
	if err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty registry, got %v", records)
	}

	if _, err := NewLoader(true, logger.NewNop()).LoadRegistry(context.Background(), failingSource{}); err == nil {
		t.Fatal("expected strict loader to fail")
	}
}

func TestLoadRegistryStrictRejectsInvalid(t *testing.T) {
	t.Parallel()

	l := NewLoader(true, logger.NewNop())
	_, err := l.LoadRegistry(context.Background(), FileScammerSource{Path: writeFile(t, "scammers.json", scammersJSON)})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

// Not parallel: NewWithWriter sets zerolog's global time format.
func TestLoadRegistryWarnsOnBadValues(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.Config{Level: "warn", Format: "json"}, &buf)

	src := FileScammerSource{Path: writeFile(t, "scammers_db.json", scammersJSON), Logger: log}
	if _, err := NewLoader(false, log).LoadRegistry(context.Background(), src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"last_seen":"yesterday"`,
		`unparseable lastSeen`,
		`"risk_level":"critical"`,
		`"risk_level":"Severe"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"last_seen":"2024-01-15T10:30:00"`) {
		t.Errorf("parseable timestamp must not warn:\n%s", out)
	}
}
