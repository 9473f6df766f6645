package analysis

import (
	"testing"
	"time"

	"hiveguard/internal/domain/models"
)

func testScammers() []models.ScammerRecord {
	seen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []models.ScammerRecord{
		{ID: "s1", Name: "Low One", ScamType: "Lottery", RiskLevel: models.RiskLevelLow, ReportCount: 2, SuccessRate: 0.1, LastSeen: seen},
		{ID: "s2", Name: "Critical One", ScamType: "Bank Fraud", RiskLevel: models.RiskLevelCritical, ReportCount: 40, SuccessRate: 0.6, LastSeen: seen, KnownPatterns: []string{"Account Compromise"}},
		{ID: "s3", Name: "High One", ScamType: "Phishing", RiskLevel: models.RiskLevelHigh, ReportCount: 12, SuccessRate: 0.3, LastSeen: seen},
		{ID: "s4", Name: "Critical Two", ScamType: "Bank Fraud", RiskLevel: models.RiskLevelCritical, ReportCount: 8, SuccessRate: 0.45, LastSeen: seen},
		{ID: "s5", Name: "Odd Level", ScamType: "Phishing", RiskLevel: "Severe", ReportCount: 1, SuccessRate: 0.2, LastSeen: seen},
		{ID: "s6", Name: "Medium One", ScamType: "", RiskLevel: models.RiskLevelMedium, ReportCount: 0, SuccessRate: 0, LastSeen: seen},
		{ID: "s7", Name: "Minimal One", ScamType: "Tax", RiskLevel: models.RiskLevelMinimal, ReportCount: 3, SuccessRate: 0.05, LastSeen: seen},
	}
}

func TestRegistryGet(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testScammers())

	got, ok := r.Get("s3")
	if !ok || got.Name != "High One" {
		t.Fatalf("expected s3, got %+v ok=%v", got, ok)
	}

	if got, ok := r.Get("nonexistent"); ok || got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testScammers())
	got, _ := r.Get("s2")
	got.Name = "changed"
	got.KnownPatterns[0] = "HACKED"

	again, _ := r.Get("s2")
	if again.Name != "Critical One" {
		t.Fatalf("registry was mutated through lookup result: %q", again.Name)
	}
	if again.KnownPatterns[0] != "Account Compromise" {
		t.Fatalf("known patterns mutated through lookup result: %v", again.KnownPatterns)
	}

	list := r.List()
	list[0].KnownPatterns[0] = "HACKED"
	if alerts := r.Alerts(); alerts[0].ActionItems[0] != "Account Compromise" {
		t.Fatalf("known patterns mutated through List: %v", alerts[0].ActionItems)
	}
}

func TestRegistryListStable(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testScammers())
	list := r.List()

	want := []string{"s2", "s4", "s3", "s6", "s1", "s5", "s7"}
	if len(list) != len(want) {
		t.Fatalf("expected %d scammers, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestRegistryReportEmpty(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	report := NewRegistry(nil).Report(now)

	if report.TotalScammersTracked != 0 || report.AverageSuccessRate != 0 {
		t.Fatalf("unexpected empty report: %+v", report)
	}
	if report.CommonScamTypes == nil || len(report.CommonScamTypes) != 0 {
		t.Fatalf("expected empty scam type list, got %v", report.CommonScamTypes)
	}
	if report.Summary != "0 active scammers tracked with 0 critical threats" {
		t.Fatalf("unexpected summary: %q", report.Summary)
	}
	if !report.ReportDate.Equal(now) {
		t.Fatalf("unexpected report date: %v", report.ReportDate)
	}
}

func TestRegistryReport(t *testing.T) {
	t.Parallel()

	report := NewRegistry(testScammers()).Report(time.Now())

	if report.TotalScammersTracked != 7 {
		t.Fatalf("expected 7 scammers, got %d", report.TotalScammersTracked)
	}
	if report.CriticalThreats != 2 || report.HighThreats != 1 {
		t.Fatalf("unexpected threat counts: critical=%d high=%d", report.CriticalThreats, report.HighThreats)
	}
	if report.TotalReportsFiled != 66 {
		t.Fatalf("expected 66 reports, got %d", report.TotalReportsFiled)
	}
	// (0.1+0.6+0.3+0.45+0.2+0+0.05)/7 = 0.2428...
	if report.AverageSuccessRate != 0.24 {
		t.Fatalf("expected 0.24, got %v", report.AverageSuccessRate)
	}
	if report.Summary != "7 active scammers tracked with 2 critical threats" {
		t.Fatalf("unexpected summary: %q", report.Summary)
	}

	want := []models.ScamTypeCount{
		{ScamType: "Bank Fraud", Count: 2},
		{ScamType: "Phishing", Count: 2},
		{ScamType: "Lottery", Count: 1},
		{ScamType: "Unknown", Count: 1},
		{ScamType: "Tax", Count: 1},
	}
	if len(report.CommonScamTypes) != len(want) {
		t.Fatalf("expected %v, got %v", want, report.CommonScamTypes)
	}
	for i := range want {
		if report.CommonScamTypes[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], report.CommonScamTypes[i])
		}
	}
}

func TestRegistryReportTopFive(t *testing.T) {
	t.Parallel()

	var records []models.ScammerRecord
	for i, st := range []string{"A", "B", "C", "D", "E", "F", "G", "G"} {
		records = append(records, models.ScammerRecord{ID: string(rune('a' + i)), ScamType: st})
	}

	report := NewRegistry(records).Report(time.Now())
	if len(report.CommonScamTypes) != 5 {
		t.Fatalf("expected 5 scam types, got %v", report.CommonScamTypes)
	}
	if report.CommonScamTypes[0].ScamType != "G" || report.CommonScamTypes[0].Count != 2 {
		t.Fatalf("expected G first, got %v", report.CommonScamTypes[0])
	}
	if report.CommonScamTypes[1].ScamType != "A" || report.CommonScamTypes[4].ScamType != "D" {
		t.Fatalf("ties must keep first-seen order, got %v", report.CommonScamTypes)
	}
}

func TestRegistryAlerts(t *testing.T) {
	t.Parallel()

	alerts := NewRegistry(testScammers()).Alerts()
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}

	first := alerts[0]
	if first.ID != "alert_s2" || first.Title != "Alert: Critical One (Critical)" {
		t.Fatalf("unexpected first alert: %+v", first)
	}
	if len(first.ActionItems) != 1 || first.ActionItems[0] != "Account Compromise" {
		t.Fatalf("unexpected action items: %v", first.ActionItems)
	}
	if alerts[2].Severity != models.RiskLevelHigh || alerts[2].ActionItems == nil {
		t.Fatalf("unexpected last alert: %+v", alerts[2])
	}
}

func TestRegistrySearch(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testScammers())

	tests := []struct {
		name  string
		query ScammerQuery
		want  []string
	}{
		{name: "empty query lists all", query: ScammerQuery{}, want: []string{"s2", "s4", "s3", "s6", "s1", "s5", "s7"}},
		{name: "text", query: ScammerQuery{Text: "critical"}, want: []string{"s2", "s4"}},
		{name: "scam type", query: ScammerQuery{ScamType: "phishing"}, want: []string{"s3", "s5"}},
		{name: "risk level", query: ScammerQuery{RiskLevel: "high"}, want: []string{"s3"}},
		{name: "combined", query: ScammerQuery{Text: "two", ScamType: "Bank Fraud"}, want: []string{"s4"}},
		{name: "no match", query: ScammerQuery{Text: "nobody"}, want: []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Search(tt.query)
			if got == nil || len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d results", tt.want, len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}
