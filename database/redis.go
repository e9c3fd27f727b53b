package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MediChain/config"

	"github.com/go-redis/redis/v8"
)

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// RedisConfigFrom picks the Redis settings out of the application config.
func RedisConfigFrom(cfg *config.AppConfig) RedisConfig {
	return RedisConfig{
		URL:          cfg.RedisURL,
		PoolSize:     cfg.RedisPoolSize,
		DialTimeout:  cfg.RedisDialTimeout,
		MinIdleConns: cfg.RedisMinIdleConns,
		ReadTimeout:  cfg.RedisReadTimeout,
		MaxRetries:   cfg.RedisMaxRetries,
	}
}

// NewRedisOptions converts the config into client options.
func NewRedisOptions(config RedisConfig) (*redis.Options, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = config.PoolSize
	opt.MinIdleConns = config.MinIdleConns
	opt.DialTimeout = config.DialTimeout
	opt.ReadTimeout = config.ReadTimeout
	opt.MaxRetries = config.MaxRetries
	return opt, nil
}

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, config RedisConfig, log *slog.Logger) (*redis.Client, error) {
	opt, err := NewRedisOptions(config)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	log.Info("redis client initialized",
		"pool_size", config.PoolSize,
		"min_idle_conns", config.MinIdleConns,
		"dial_timeout", config.DialTimeout.String(),
		"read_timeout", config.ReadTimeout.String(),
		"max_retries", config.MaxRetries,
	)
	return client, nil
}

// MonitorRedisPool logs the connection pool statistics for monitoring
func MonitorRedisPool(client *redis.Client, log *slog.Logger) {
	stats := client.PoolStats()
	log.Debug("redis pool stats", "total", stats.TotalConns, "idle", stats.IdleConns, "stale", stats.StaleConns)
}
