package analysis

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"hiveguard/internal/domain/models"
)

// topScamTypes is how many scam types the intelligence report ranks
const topScamTypes = 5

// Registry is the read-only collection of known scammers. It is safe for
// concurrent use because nothing mutates it after construction.
type Registry struct {
	scammers []models.ScammerRecord
}

// NewRegistry copies records into a new registry, keeping their order
func NewRegistry(records []models.ScammerRecord) *Registry {
	return &Registry{scammers: models.CloneScammers(records)}
}

// Len returns the number of tracked scammers
func (r *Registry) Len() int {
	return len(r.scammers)
}

// Get returns the first scammer whose ID equals id. A miss is not an error.
func (r *Registry) Get(id string) (*models.ScammerRecord, bool) {
	for i := range r.scammers {
		if r.scammers[i].ID == id {
			rec := r.scammers[i].Clone()
			return &rec, true
		}
	}
	return nil, false
}

// List returns all scammers ordered by risk level rank. Equal ranks keep
// registry order.
func (r *Registry) List() []models.ScammerRecord {
	sorted := models.CloneScammers(r.scammers)
	slices.SortStableFunc(sorted, func(a, b models.ScammerRecord) int {
		return a.RiskLevel.Rank() - b.RiskLevel.Rank()
	})
	return sorted
}

// ScammerQuery filters a registry search. Empty fields match everything.
type ScammerQuery struct {
	// Text is matched case-insensitively against id, name, phone number and description
	Text      string
	ScamType  string
	RiskLevel models.RiskLevel
}

// Search returns the scammers matching q in List order
func (r *Registry) Search(q ScammerQuery) []models.ScammerRecord {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	matches := make([]models.ScammerRecord, 0)
	for _, s := range r.List() {
		if q.ScamType != "" && !strings.EqualFold(s.ScamType, q.ScamType) {
			continue
		}
		if q.RiskLevel != "" && !strings.EqualFold(string(s.RiskLevel), string(q.RiskLevel)) {
			continue
		}
		if text != "" && !matchesText(s, text) {
			continue
		}
		matches = append(matches, s)
	}
	return matches
}

func matchesText(s models.ScammerRecord, text string) bool {
	for _, field := range []string{s.ID, s.Name, s.PhoneNumber, s.Description} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

// Alerts returns one alert per Critical or High scammer, most severe first
func (r *Registry) Alerts() []models.ScammerAlert {
	alerts := make([]models.ScammerAlert, 0)
	for _, s := range r.List() {
		if s.RiskLevel != models.RiskLevelCritical && s.RiskLevel != models.RiskLevelHigh {
			continue
		}
		scamType := s.ScamType
		if scamType == "" {
			scamType = "Unknown"
		}
		alerts = append(alerts, models.ScammerAlert{
			ID:          "alert_" + s.ID,
			Type:        scamType,
			Title:       fmt.Sprintf("Alert: %s (%s)", s.Name, s.RiskLevel),
			Description: s.Description,
			Severity:    s.RiskLevel,
			Timestamp:   s.LastSeen,
			ActionItems: nonNil(s.KnownPatterns),
		})
	}
	return alerts
}

// Report aggregates the registry into summary statistics stamped with now
func (r *Registry) Report(now time.Time) models.IntelligenceReport {
	report := models.IntelligenceReport{
		ReportDate:           now,
		TotalScammersTracked: len(r.scammers),
		CommonScamTypes:      make([]models.ScamTypeCount, 0, topScamTypes),
	}

	var successSum float64
	counts := make(map[string]int)
	var order []string

	for _, s := range r.scammers {
		switch s.RiskLevel {
		case models.RiskLevelCritical:
			report.CriticalThreats++
		case models.RiskLevelHigh:
			report.HighThreats++
		}
		report.TotalReportsFiled += s.ReportCount
		successSum += s.SuccessRate

		scamType := s.ScamType
		if scamType == "" {
			scamType = "Unknown"
		}
		if _, ok := counts[scamType]; !ok {
			order = append(order, scamType)
		}
		counts[scamType]++
	}

	if report.TotalScammersTracked > 0 {
		avg := successSum / float64(report.TotalScammersTracked)
		report.AverageSuccessRate = math.Round(avg*100) / 100
	}

	// order is first-encountered, so a stable sort breaks count ties by it
	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	for _, t := range order {
		if len(report.CommonScamTypes) == topScamTypes {
			break
		}
		report.CommonScamTypes = append(report.CommonScamTypes, models.ScamTypeCount{ScamType: t, Count: counts[t]})
	}

	report.Summary = fmt.Sprintf("%d active scammers tracked with %d critical threats",
		report.TotalScammersTracked, report.CriticalThreats)

	return report
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
