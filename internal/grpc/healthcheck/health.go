// Package healthcheck exposes dependency health over the standard gRPC health
// protocol and reuses the same checks for HTTP readiness.
package healthcheck

import (
	"context"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"hiveguard/pkg/logger"
)

// ServiceName is the gRPC health service name reported alongside ""
const ServiceName = "hiveguard.v1.CallAnalysis"

// DefaultInterval between background checks
const DefaultInterval = 10 * time.Second

// Pinger is anything that can report its own liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Checker runs dependency checks and mirrors the result into a gRPC health server
type Checker struct {
	server   *health.Server
	checks   map[string]Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger

	mu   sync.RWMutex
	last map[string]string
}

// NewChecker creates a checker. Optional dependencies that are disabled should
// simply be left out of checks.
func NewChecker(checks map[string]Pinger, interval time.Duration, log *logger.Logger) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if checks == nil {
		checks = map[string]Pinger{}
	}

	c := &Checker{
		server:   health.NewServer(),
		checks:   checks,
		interval: interval,
		timeout:  2 * time.Second,
		logger:   log.WithComponent("healthcheck"),
		last:     map[string]string{},
	}
	c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return c
}

// Register registers the health service with a gRPC server
func (c *Checker) Register(grpcServer *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcServer, c.server)
}

// Server returns the underlying health server
func (c *Checker) Server() *health.Server {
	return c.server
}

// Run checks dependencies every interval until ctx is done, then marks the
// service NOT_SERVING.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.CheckNow(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.CheckNow(ctx)
		}
	}
}

// CheckNow pings every dependency once and returns per-dependency status
// ("ok" or the error text) and whether all of them are healthy.
func (c *Checker) CheckNow(ctx context.Context) (map[string]string, bool) {
	results := make(map[string]string, len(c.checks))
	healthy := true

	for _, name := range c.names() {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.checks[name].Ping(checkCtx)
		cancel()

		if err != nil {
			healthy = false
			results[name] = err.Error()
			c.logger.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			continue
		}
		results[name] = "ok"
	}

	if healthy {
		c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		c.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}

	c.mu.Lock()
	c.last = results
	c.mu.Unlock()

	return results, healthy
}

// Last returns the result of the most recent check
func (c *Checker) Last() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.last))
	for k, v := range c.last {
		out[k] = v
	}
	return out
}

func (c *Checker) names() []string {
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Checker) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}
