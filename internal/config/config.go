/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int

	// FontPath points at a TTF for badge text. Empty means the embedded
	// Go Mono Bold face. A set-but-missing path fails startup.
	FontPath string

	DefaultLanguage string

	BadgeCacheSize     int
	AnimationCacheSize int

	// Shared cache configuration; empty RedisAddr disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("TIMERBADGE_ENV", "development"),
		HTTPBind:    getEnv("TIMERBADGE_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("TIMERBADGE_HTTP_PORT", 8080),

		FontPath: getEnv("TIMERBADGE_FONT_PATH", ""),

		DefaultLanguage: strings.ToLower(getEnv("TIMERBADGE_DEFAULT_LANG", "en")),

		BadgeCacheSize:     getEnvInt("TIMERBADGE_BADGE_CACHE_SIZE", 512),
		AnimationCacheSize: getEnvInt("TIMERBADGE_ANIMATION_CACHE_SIZE", 256),

		RedisAddr:     getEnv("TIMERBADGE_REDIS_ADDR", ""),
		RedisPassword: getEnv("TIMERBADGE_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("TIMERBADGE_REDIS_DB", 0),

		TracingEnabled:    getEnvBool("TIMERBADGE_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("TIMERBADGE_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("TIMERBADGE_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.FontPath != "" {
		if _, err := os.Stat(cfg.FontPath); err != nil {
			return nil, fmt.Errorf("TIMERBADGE_FONT_PATH %q is not readable: %w", cfg.FontPath, err)
		}
	}

	if cfg.BadgeCacheSize <= 0 || cfg.AnimationCacheSize <= 0 {
		return nil, fmt.Errorf("cache sizes must be positive (badge=%d, animation=%d)",
			cfg.BadgeCacheSize, cfg.AnimationCacheSize)
	}

	return cfg, nil
}

// FontData loads the configured TTF, or the fallback when no path is set.
func (c *Config) FontData(fallback []byte) ([]byte, error) {
	if c.FontPath == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(c.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read font %q: %w", c.FontPath, err)
	}
	return data, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
