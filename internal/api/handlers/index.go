package handlers

import "net/http"

// IndexHandler serves the service description at /
type IndexHandler struct {
	version string
}

// NewIndexHandler creates a new IndexHandler
func NewIndexHandler(version string) *IndexHandler {
	return &IndexHandler{version: version}
}

// IndexResponse lists the public endpoints
type IndexResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Get handles GET /
func (h *IndexHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IndexResponse{
		Message: "HIVE Scam Detection API",
		Status:  "running",
		Version: h.version,
		Endpoints: map[string]string{
			"health":              "GET /api/health",
			"analyze-call":        "POST /api/analyze-call",
			"extract-keywords":    "POST /api/extract-keywords",
			"detect-patterns":     "POST /api/detect-patterns",
			"calculate-risk":      "POST /api/calculate-risk",
			"sentiment-analysis":  "POST /api/sentiment-analysis",
			"get-scammers":        "GET /api/scammers",
			"search-scammers":     "GET /api/scammers/search",
			"get-scammer":         "GET /api/scammers/{id}",
			"intelligence-report": "GET /api/intelligence-report",
			"get-patterns":        "GET /api/scam-patterns",
			"get-alerts":          "GET /api/alerts",
			"stats":               "GET /api/stats",
			"live-calls":          "GET /ws/calls",
			"metrics":             "GET /metrics",
		},
	})
}
