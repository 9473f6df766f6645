package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"hiveguard/internal/config"
	"hiveguard/internal/domain/models"
	"hiveguard/pkg/logger"
)

// RedisCache wraps the Redis client with the counters the API needs
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return NewRedisWithClient(client, cfg.KeyPrefix, log), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, keyPrefix string, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    log,
	}
}

// Client returns the underlying Redis client
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// key prepends the namespace prefix to a key
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

const (
	KeyRateLimitPrefix = "rate_limit:"

	// Analysis counters, one hash field per risk level plus a total
	KeyAnalysisStats   = "stats:analysis"
	FieldAnalysisTotal = "total"
)

// RecordAnalysis bumps the persistent counters for one analyzed call
func (c *RedisCache) RecordAnalysis(ctx context.Context, level models.RiskLevel) error {
	key := c.key(KeyAnalysisStats)

	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, key, FieldAnalysisTotal, 1)
	pipe.HIncrBy(ctx, key, string(level), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}
	return nil
}

// GetAnalysisStats returns the total and per-level analysis counts
func (c *RedisCache) GetAnalysisStats(ctx context.Context) (models.AnalysisStats, error) {
	stats := models.AnalysisStats{ByRiskLevel: map[string]int64{}}

	fields, err := c.client.HGetAll(ctx, c.key(KeyAnalysisStats)).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to read analysis stats: %w", err)
	}

	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.logger.Warn().Str("field", field).Str("value", raw).Msg("ignoring non-numeric stats field")
			continue
		}
		if field == FieldAnalysisTotal {
			stats.TotalAnalyses = n
			continue
		}
		stats.ByRiskLevel[field] = n
	}

	return stats, nil
}

// CheckRateLimit checks and increments a fixed-window rate limit counter.
// Returns (allowed, remaining, resetTime, error).
func (c *RedisCache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	slot := now.Unix() / int64(window.Seconds())
	windowKey := c.key(fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, key, slot))

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := time.Unix((slot+1)*int64(window.Seconds()), 0)

	return count <= limit, remaining, resetTime, nil
}
