package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hiveguard/internal/api/handlers"
	apimiddleware "hiveguard/internal/api/middleware"
	"hiveguard/internal/config"
	"hiveguard/internal/metrics"
	"hiveguard/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  apimiddleware.RateLimitStore
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. limiter and m may be nil; rate
// limiting is skipped without a limiter.
func NewRouter(cfg config.Config, h *handlers.Handlers, limiter apimiddleware.RateLimitStore, m *metrics.Metrics, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		limiter:  limiter,
		metrics:  m,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	if r.metrics != nil {
		router.Use(apimiddleware.Metrics(r.metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Probes and scrapes stay outside the rate limit
	router.Get("/", r.handlers.Index.Get)
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)
	if r.metrics != nil {
		router.Handle("/metrics", r.metrics.Handler())
	}

	// WebSocket streaming endpoint (live feed of high-risk calls)
	router.Get("/ws/calls", r.handlers.Streaming.HandleWebSocket)

	router.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))
		if r.config.RateLimit.Enabled && r.limiter != nil {
			api.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.logger))
		}

		api.Get("/health", r.handlers.Health.Check)

		// Transcript analysis
		api.Post("/analyze-call", r.handlers.Analysis.AnalyzeCall)
		api.Post("/extract-keywords", r.handlers.Analysis.ExtractKeywords)
		api.Post("/detect-patterns", r.handlers.Analysis.DetectPatterns)
		api.Post("/calculate-risk", r.handlers.Analysis.CalculateRisk)
		api.Post("/sentiment-analysis", r.handlers.Analysis.Sentiment)

		// Scammer registry
		api.Route("/scammers", func(scammers chi.Router) {
			scammers.Get("/", r.handlers.Scammers.List)
			scammers.Get("/search", r.handlers.Scammers.Search)
			scammers.Get("/{id}", r.handlers.Scammers.Get)
		})
		api.Get("/intelligence-report", r.handlers.Scammers.IntelligenceReport)
		api.Get("/alerts", r.handlers.Scammers.Alerts)

		// Pattern catalog
		api.Get("/scam-patterns", r.handlers.Patterns.List)
		api.Get("/patterns", r.handlers.Patterns.List)

		api.Get("/stats", r.handlers.Stats.Get)
	})

	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"method not allowed"}`))
	})

	return router
}
