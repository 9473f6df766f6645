// Package refdata loads the read-only pattern catalog and scammer registry.
//
// Loading fails open by default: a missing or malformed source yields an empty
// collection and a warning, and invalid records are skipped one by one. With
// Strict set, the same conditions are returned as errors instead.
package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hiveguard/internal/domain/models"
	"hiveguard/pkg/logger"
)

var (
	// ErrInvalidRecord marks a pattern, trigger or scammer that failed validation
	ErrInvalidRecord = errors.New("invalid reference record")
	// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML
	ErrUnsupportedFormat = errors.New("unsupported reference data format")
)

// ScammerSource yields raw scammer records for the registry
type ScammerSource interface {
	Name() string
	LoadScammers(ctx context.Context) ([]models.ScammerRecord, error)
}

// Loader reads and validates reference data
type Loader struct {
	strict bool
	logger *logger.Logger
}

// NewLoader creates a loader. strict disables fail-open behaviour.
func NewLoader(strict bool, log *logger.Logger) *Loader {
	return &Loader{
		strict: strict,
		logger: log.WithComponent("refdata"),
	}
}

// LoadCatalog reads the pattern catalog at path
func (l *Loader) LoadCatalog(path string) (models.PatternCatalog, error) {
	var raw rawCatalog
	if err := decodeFile(path, &raw); err != nil {
		return l.emptyCatalog(path, err)
	}

	catalog := models.PatternCatalog{
		Patterns: make([]models.ScamPattern, 0, len(raw.Patterns)),
		Triggers: make([]models.RiskTrigger, 0, len(raw.Triggers)),
	}

	names := make(map[string]struct{}, len(raw.Patterns))
	for i, rp := range raw.Patterns {
		p, err := rp.toModel()
		if err != nil {
			if l.strict {
				return models.PatternCatalog{}, fmt.Errorf("%s: pattern %d: %w", path, i, err)
			}
			l.logger.Warn().Err(err).Str("path", path).Int("index", i).Msg("skipping scam pattern")
			continue
		}
		if _, dup := names[p.Name]; dup {
			l.logger.Warn().Str("path", path).Str("pattern", p.Name).Msg("duplicate pattern name; scores will collide")
		}
		names[p.Name] = struct{}{}
		catalog.Patterns = append(catalog.Patterns, p)
	}

	for i, rt := range raw.Triggers {
		t, err := rt.toModel()
		if err != nil {
			if l.strict {
				return models.PatternCatalog{}, fmt.Errorf("%s: trigger %d: %w", path, i, err)
			}
			l.logger.Warn().Err(err).Str("path", path).Int("index", i).Msg("skipping risk trigger")
			continue
		}
		catalog.Triggers = append(catalog.Triggers, t)
	}

	l.logger.Info().
		Str("path", path).
		Int("patterns", len(catalog.Patterns)).
		Int("triggers", len(catalog.Triggers)).
		Msg("pattern catalog loaded")

	return catalog, nil
}

// LoadRegistry pulls scammers from src and validates them
func (l *Loader) LoadRegistry(ctx context.Context, src ScammerSource) ([]models.ScammerRecord, error) {
	records, err := src.LoadScammers(ctx)
	if err != nil {
		if l.strict {
			return nil, fmt.Errorf("load scammers from %s: %w", src.Name(), err)
		}
		l.logger.Warn().Err(err).Str("source", src.Name()).Msg("scammer registry unavailable, continuing with empty registry")
		return []models.ScammerRecord{}, nil
	}

	valid := make([]models.ScammerRecord, 0, len(records))
	for i, rec := range records {
		rec, err := normalizeScammer(rec)
		if err != nil {
			if l.strict {
				return nil, fmt.Errorf("%s: scammer %d: %w", src.Name(), i, err)
			}
			l.logger.Warn().Err(err).Str("source", src.Name()).Int("index", i).Msg("skipping scammer record")
			continue
		}
		if level, ok := models.ParseRiskLevel(string(rec.RiskLevel)); !ok || level != rec.RiskLevel {
			l.logger.Warn().
				Str("source", src.Name()).
				Str("id", rec.ID).
				Str("risk_level", string(rec.RiskLevel)).
				Msg("non-canonical risk level; scammer sorts last and is not counted as critical or high")
		}
		valid = append(valid, rec)
	}

	l.logger.Info().Str("source", src.Name()).Int("scammers", len(valid)).Msg("scammer registry loaded")
	return valid, nil
}

func (l *Loader) emptyCatalog(path string, err error) (models.PatternCatalog, error) {
	if l.strict {
		return models.PatternCatalog{}, fmt.Errorf("load pattern catalog: %w", err)
	}
	l.logger.Warn().Err(err).Str("path", path).Msg("pattern catalog unavailable, continuing with empty catalog")
	return models.PatternCatalog{
		Patterns: []models.ScamPattern{},
		Triggers: []models.RiskTrigger{},
	}, nil
}

// FileScammerSource reads a JSON or YAML array of scammer records. Logger is
// optional and receives a warning for every unparseable lastSeen.
type FileScammerSource struct {
	Path   string
	Logger *logger.Logger
}

func (s FileScammerSource) Name() string {
	return "file:" + s.Path
}

func (s FileScammerSource) LoadScammers(_ context.Context) ([]models.ScammerRecord, error) {
	var raw []rawScammer
	if err := decodeFile(s.Path, &raw); err != nil {
		return nil, err
	}

	records := make([]models.ScammerRecord, 0, len(raw))
	for _, r := range raw {
		rec := r.toModel()
		if rec.LastSeen.IsZero() && strings.TrimSpace(r.LastSeen) != "" && s.Logger != nil {
			s.Logger.Warn().
				Str("path", s.Path).
				Str("id", r.ID).
				Str("last_seen", r.LastSeen).
				Msg("unparseable lastSeen, using zero time")
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeFile picks a decoder from the file extension. Unknown extensions are
// tried as JSON.
func decodeFile(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("parse %s: %w: %w", path, ErrUnsupportedFormat, err)
		}
	}
	return nil
}

type rawCatalog struct {
	Patterns []rawPattern `json:"scam_patterns" yaml:"scam_patterns"`
	Triggers []rawTrigger `json:"risk_triggers" yaml:"risk_triggers"`
}

type rawPattern struct {
	Name           string   `json:"name" yaml:"name"`
	Keywords       []string `json:"keywords" yaml:"keywords"`
	Severity       string   `json:"severity" yaml:"severity"`
	IndicatorScore *float64 `json:"indicatorScore" yaml:"indicatorScore"`
	Description    string   `json:"description" yaml:"description"`
}

func (r rawPattern) toModel() (models.ScamPattern, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return models.ScamPattern{}, fmt.Errorf("%w: pattern without a name", ErrInvalidRecord)
	}

	score := models.DefaultIndicatorScore
	if r.IndicatorScore != nil {
		score = clamp01(*r.IndicatorScore)
	}

	// A blank keyword would be contained in every transcript.
	keywords := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return models.ScamPattern{
		Name:           name,
		Keywords:       keywords,
		Severity:       r.Severity,
		IndicatorScore: score,
		Description:    r.Description,
	}, nil
}

type rawTrigger struct {
	Keyword string   `json:"keyword" yaml:"keyword"`
	Weight  *float64 `json:"weight" yaml:"weight"`
}

func (r rawTrigger) toModel() (models.RiskTrigger, error) {
	kw := strings.TrimSpace(r.Keyword)
	if kw == "" {
		return models.RiskTrigger{}, fmt.Errorf("%w: trigger without a keyword", ErrInvalidRecord)
	}

	weight := models.DefaultTriggerWeight
	if r.Weight != nil {
		weight = clamp01(*r.Weight)
	}

	return models.RiskTrigger{Keyword: kw, Weight: weight}, nil
}

type rawScammer struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	PhoneNumber   string   `json:"phoneNumber" yaml:"phoneNumber"`
	ScamType      string   `json:"scamType" yaml:"scamType"`
	RiskLevel     string   `json:"riskLevel" yaml:"riskLevel"`
	ReportCount   int      `json:"reportCount" yaml:"reportCount"`
	SuccessRate   float64  `json:"successRate" yaml:"successRate"`
	LastSeen      string   `json:"lastSeen" yaml:"lastSeen"`
	KnownPatterns []string `json:"knownPatterns" yaml:"knownPatterns"`
	Description   string   `json:"description" yaml:"description"`
}

func (r rawScammer) toModel() models.ScammerRecord {
	return models.ScammerRecord{
		ID:            r.ID,
		Name:          r.Name,
		PhoneNumber:   r.PhoneNumber,
		ScamType:      r.ScamType,
		RiskLevel:     models.RiskLevel(r.RiskLevel),
		ReportCount:   r.ReportCount,
		SuccessRate:   r.SuccessRate,
		LastSeen:      parseTimestamp(r.LastSeen),
		KnownPatterns: r.KnownPatterns,
		Description:   r.Description,
	}
}

// normalizeScammer validates a record from any source. Missing risk levels
// default to Low; any other value is kept verbatim, so "critical" sorts last.
func normalizeScammer(rec models.ScammerRecord) (models.ScammerRecord, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return rec, fmt.Errorf("%w: scammer without an id", ErrInvalidRecord)
	}

	if rec.RiskLevel == "" {
		rec.RiskLevel = models.RiskLevelLow
	}

	if rec.ReportCount < 0 {
		rec.ReportCount = 0
	}
	rec.SuccessRate = clamp01(rec.SuccessRate)
	if rec.KnownPatterns == nil {
		rec.KnownPatterns = []string{}
	}

	return rec, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts ISO-8601 variants; anything else becomes the zero time
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
