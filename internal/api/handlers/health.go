package handlers

import (
	"net/http"
	"time"

	"hiveguard/internal/grpc/healthcheck"
	"hiveguard/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checker   *healthcheck.Checker
	version   string
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(checker *healthcheck.Checker, version string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		checker:   checker,
		version:   version,
		logger:    log.WithComponent("health"),
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health and GET /api/health. It reports liveness only.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.response("healthy", nil))
}

// Ready handles GET /ready. The analysis core has no external dependencies,
// so only optional integrations can make the service not ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	overall := "ready"

	var checks map[string]string
	if h.checker != nil {
		var healthy bool
		checks, healthy = h.checker.CheckNow(r.Context())
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "not ready"
		}
	}

	writeJSON(w, status, h.response(overall, checks))
}

func (h *HealthHandler) response(status string, checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Service:   "HIVE Scam Detection API",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}
