package models

import "time"

// Sentiment is the coarse tone of a transcript
type Sentiment string

const (
	SentimentAggressive Sentiment = "Aggressive"
	SentimentPersuasive Sentiment = "Persuasive"
	SentimentNeutral    Sentiment = "Neutral"
)

// AnalysisResult is the verdict for a single transcript. It is built per call and
// holds no reference back to the engine; ScammerMatch points into the read-only registry.
type AnalysisResult struct {
	Keywords          []string           `json:"keywords"`
	DetectedPatterns  []string           `json:"detected_patterns"`
	PatternScores     map[string]float64 `json:"pattern_scores"`
	RiskScore         float64            `json:"risk_score"`
	RiskLevel         RiskLevel          `json:"risk_level"`
	Sentiment         Sentiment          `json:"sentiment"`
	ScammerMatch      *ScammerRecord     `json:"scammer_match"`
	Confidence        float64            `json:"confidence"`
	AnalysisTimestamp time.Time          `json:"analysis_timestamp"`
}

// ScamTypeCount is one entry of the most-common scam types ranking
type ScamTypeCount struct {
	ScamType string `json:"scam_type"`
	Count    int    `json:"count"`
}

// IntelligenceReport summarizes the scammer registry
type IntelligenceReport struct {
	ReportDate           time.Time       `json:"report_date"`
	TotalScammersTracked int             `json:"total_scammers_tracked"`
	CriticalThreats      int             `json:"critical_threats"`
	HighThreats          int             `json:"high_threats"`
	TotalReportsFiled    int             `json:"total_reports_filed"`
	AverageSuccessRate   float64         `json:"average_success_rate"`
	CommonScamTypes      []ScamTypeCount `json:"common_scam_types"`
	Summary              string          `json:"summary"`
}

// AnalysisStats counts analyzed calls since the counters were created
type AnalysisStats struct {
	TotalAnalyses int64            `json:"total_analyses"`
	ByRiskLevel   map[string]int64 `json:"by_risk_level"`
	Source        string           `json:"source"`
}
