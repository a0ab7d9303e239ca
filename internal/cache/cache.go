/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides an optional Redis-backed store for encoded
// animations so multiple replicas behind a load balancer share renders.
// The in-process LRU stays authoritative; Redis failures degrade to
// local-only operation.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultAnimationTTL bounds how long encoded GIF bytes live in Redis.
// Keys are quantized to 60s buckets, so entries go stale quickly anyway.
const DefaultAnimationTTL = 10 * time.Minute

const keyAnimation = "timerbadge:gif:" // + end:quantized_now:lang

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AnimationTTL time.Duration

	// If true, disable caching after a Redis error instead of retrying
	// on every request.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		AnimationTTL:   DefaultAnimationTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed animation caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance. An unreachable Redis is not an error;
// the cache starts disabled and the service runs with local caches only.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	if cfg.AnimationTTL <= 0 {
		cfg.AnimationTTL = DefaultAnimationTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	scoped := logger.With().Str("component", "cache").Logger()

	if err := client.Ping(ctx).Err(); err != nil {
		scoped.Warn().Err(err).Msg("Redis cache unavailable, running without shared cache")
		return &Cache{
			logger:   scoped,
			config:   cfg,
			disabled: true,
		}, nil
	}

	scoped.Info().Str("addr", cfg.RedisAddr).Msg("Redis animation cache initialized")

	return &Cache{
		client: client,
		logger: scoped,
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling shared cache due to Redis error")
	}
}

func animationKey(endTS, quantTS int64, lang string) string {
	return fmt.Sprintf("%s%d:%d:%s", keyAnimation, endTS, quantTS, lang)
}

// GetAnimation retrieves encoded GIF bytes for a quantized cache key.
func (c *Cache) GetAnimation(ctx context.Context, endTS, quantTS int64, lang string) ([]byte, bool) {
	if !c.IsAvailable() {
		return nil, false
	}

	data, err := c.client.Get(ctx, animationKey(endTS, quantTS, lang)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.handleError(err, "get_animation")
		return nil, false
	}
	return data, true
}

// SetAnimation stores encoded GIF bytes for a quantized cache key.
// Failures only log; the caller already has the bytes.
func (c *Cache) SetAnimation(ctx context.Context, endTS, quantTS int64, lang string, data []byte) {
	if !c.IsAvailable() {
		return
	}

	if err := c.client.Set(ctx, animationKey(endTS, quantTS, lang), data, c.config.AnimationTTL).Err(); err != nil {
		c.handleError(err, "set_animation")
	}
}
