package models

import (
	"slices"
	"strings"
	"time"
)

// RiskLevel is the categorical label derived from a risk score
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "Critical"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMinimal  RiskLevel = "Minimal"
)

// Rank orders levels for listing: Critical first, anything unrecognized last.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelCritical:
		return 0
	case RiskLevelHigh:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelLow:
		return 3
	default:
		return 4
	}
}

// AtLeast reports whether l is as severe as other or more
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.Rank() <= other.Rank()
}

// ParseRiskLevel matches a level name case-insensitively
func ParseRiskLevel(s string) (RiskLevel, bool) {
	for _, l := range []RiskLevel{RiskLevelCritical, RiskLevelHigh, RiskLevelMedium, RiskLevelLow, RiskLevelMinimal} {
		if strings.EqualFold(string(l), s) {
			return l, true
		}
	}
	return "", false
}

// ScammerRecord is a known fraudulent identity from the registry
type ScammerRecord struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	PhoneNumber   string    `json:"phoneNumber" yaml:"phoneNumber"`
	ScamType      string    `json:"scamType" yaml:"scamType"`
	RiskLevel     RiskLevel `json:"riskLevel" yaml:"riskLevel"`
	ReportCount   int       `json:"reportCount" yaml:"reportCount"`
	SuccessRate   float64   `json:"successRate" yaml:"successRate"`
	LastSeen      time.Time `json:"lastSeen" yaml:"lastSeen"`
	KnownPatterns []string  `json:"knownPatterns" yaml:"knownPatterns"`
	Description   string    `json:"description" yaml:"description"`
}

// ScammerAlert is an active alert derived from a Critical or High scammer
type ScammerAlert struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    RiskLevel `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	ActionItems []string  `json:"actionItems"`
}

// Clone returns a copy of s that shares no slices with it
func (s ScammerRecord) Clone() ScammerRecord {
	s.KnownPatterns = slices.Clone(s.KnownPatterns)
	return s
}

// CloneScammers deep-copies a scammer list
func CloneScammers(records []ScammerRecord) []ScammerRecord {
	if records == nil {
		return nil
	}
	out := make([]ScammerRecord, len(records))
	for i, s := range records {
		out[i] = s.Clone()
	}
	return out
}
