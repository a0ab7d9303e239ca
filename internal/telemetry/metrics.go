/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the timer badge service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP surface metrics.
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timerbadge_api_requests_total",
		Help: "Total HTTP requests by method, endpoint and status code.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timerbadge_api_request_duration_seconds",
		Help:    "HTTP request latency by method, endpoint and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timerbadge_api_active_connections",
		Help: "Number of in-flight HTTP requests.",
	})
)

// Render pipeline metrics.
var (
	AnimationBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timerbadge_animation_builds_total",
		Help: "Full 60-frame animation pipeline runs (animation cache misses).",
	})

	AnimationBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timerbadge_animation_build_duration_seconds",
		Help:    "Time spent assembling and encoding one animated GIF.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	AnimationCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timerbadge_animation_cache_hits_total",
		Help: "Animation byte cache hits by cache level (memory, redis).",
	}, []string{"level"})

	AnimationCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timerbadge_animation_cache_misses_total",
		Help: "Animation byte cache misses across all levels.",
	})

	BadgeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timerbadge_badge_cache_hits_total",
		Help: "Rendered badge cache hits.",
	})

	BadgeCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timerbadge_badge_cache_misses_total",
		Help: "Rendered badge cache misses (text rasterized from scratch).",
	})

	BadgesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timerbadge_badges_rendered_total",
		Help: "Badges rasterized by language.",
	}, []string{"language"})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
