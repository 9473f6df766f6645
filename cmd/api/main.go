package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"hiveguard/internal/api"
	"hiveguard/internal/api/handlers"
	apimiddleware "hiveguard/internal/api/middleware"
	"hiveguard/internal/config"
	"hiveguard/internal/domain/models"
	"hiveguard/internal/domain/services"
	"hiveguard/internal/domain/services/analysis"
	"hiveguard/internal/grpc/healthcheck"
	"hiveguard/internal/infrastructure/cache"
	"hiveguard/internal/infrastructure/database"
	"hiveguard/internal/infrastructure/database/repository"
	"hiveguard/internal/infrastructure/refdata"
	"hiveguard/internal/metrics"
	"hiveguard/internal/streaming"
	"hiveguard/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.New(logger.Config{
			Level:      cfg.Logger.Level,
			Format:     cfg.Logger.Format,
			TimeFormat: cfg.Logger.TimeFormat,
		})
	}

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting HIVE scam detection API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional infrastructure
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Reference data is loaded once and never changes afterwards
	engine, err := loadEngine(ctx, cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load reference data")
	}

	threshold, ok := models.ParseRiskLevel(cfg.Analysis.AlertThreshold)
	if !ok {
		log.Warn().Str("threshold", cfg.Analysis.AlertThreshold).Msg("unknown alert threshold, using High")
		threshold = models.RiskLevelHigh
	}

	m := metrics.New()
	analyzer := services.NewCallAnalyzer(engine, m, threshold, log)

	var limiter apimiddleware.RateLimitStore
	if redisCache != nil {
		analyzer.SetRecorder(redisCache)
		limiter = redisCache
	}

	// Streaming
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without call event stream")
			natsPublisher = nil
		} else {
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	eventBus := streaming.NewEventBus(natsPublisher, log)
	defer eventBus.Close()
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	wsHub := streaming.NewWebSocketHub(eventBus, log)
	go wsHub.Run(ctx)

	if cfg.Analysis.PublishEvents {
		analyzer.SetEventPublisher(streaming.NewEventBusPublisher(eventBus))
	}

	// Health checks only cover dependencies that are actually in use
	checks := make(map[string]healthcheck.Pinger)
	if redisCache != nil {
		checks["redis"] = redisCache
	}
	if db != nil {
		checks["postgres"] = db
	}
	if natsPublisher != nil {
		checks["nats"] = natsPublisher
	}
	checker := healthcheck.NewChecker(checks, healthcheck.DefaultInterval, log)
	go checker.Run(ctx)

	h := handlers.NewHandlers(handlers.Dependencies{
		Analyzer: analyzer,
		Checker:  checker,
		WSHub:    wsHub,
		EventBus: eventBus,
		Version:  cfg.App.Version,
		Logger:   log,
	})

	router := api.NewRouter(*cfg, h, limiter, m, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// gRPC only serves the standard health protocol
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	checker.Register(grpcServer)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC health server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if natsPublisher != nil {
		natsPublisher.Close()
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects the optional backing services. A failed
// connection disables that dependency instead of stopping the process.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Catalog.RegistrySource == config.RegistrySourcePostgres {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, scammer registry will be empty")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, using in-memory stats and no rate limiting")
			redisCache = nil
		}
	}

	return db, redisCache
}

// loadEngine reads the pattern catalog and scammer registry and builds the
// analysis engine around them.
func loadEngine(ctx context.Context, cfg *config.Config, db *database.PostgresDB, log *logger.Logger) (*analysis.Engine, error) {
	loader := refdata.NewLoader(cfg.Catalog.Strict, log)

	catalog, err := loader.LoadCatalog(cfg.Catalog.PatternsPath)
	if err != nil {
		return nil, err
	}

	var src refdata.ScammerSource = refdata.FileScammerSource{Path: cfg.Catalog.ScammersPath, Logger: log.WithComponent("refdata")}
	if cfg.Catalog.RegistrySource == config.RegistrySourcePostgres {
		if db == nil {
			if cfg.Catalog.Strict {
				return nil, errors.New("scammer registry source is postgres but no database connection is available")
			}
			return analysis.NewEngine(catalog, nil, log), nil
		}
		src = repository.NewScammerRepository(db.Pool())
	}

	scammers, err := loader.LoadRegistry(ctx, src)
	if err != nil {
		return nil, err
	}

	return analysis.NewEngine(catalog, scammers, log), nil
}
