/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires the HTTP surface for the timer badge service.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/friendsincode/timerbadge/internal/cache"
	"github.com/friendsincode/timerbadge/internal/config"
	"github.com/friendsincode/timerbadge/internal/i18n"
	"github.com/friendsincode/timerbadge/internal/render"
	"github.com/friendsincode/timerbadge/internal/telemetry"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	table    i18n.Table
	animator *render.Animator
	shared   *cache.Cache

	// now is the wall clock, injectable for deterministic tests.
	now func() time.Time
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("timerbadge-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(30 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		now:    time.Now,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	table := i18n.NewTable()
	table, ok := table.WithFallback(s.cfg.DefaultLanguage)
	if !ok {
		return fmt.Errorf("unsupported default language %q", s.cfg.DefaultLanguage)
	}
	s.table = table

	ttf, err := s.cfg.FontData(render.DefaultFont())
	if err != nil {
		return err
	}
	engine, err := render.NewEngine(ttf, s.cfg.BadgeCacheSize, s.logger)
	if err != nil {
		return fmt.Errorf("initialize badge renderer: %w", err)
	}

	// Shared animation cache between replicas; local LRUs stay
	// authoritative when Redis is absent or down.
	var shared render.SharedCache
	if s.cfg.RedisAddr != "" {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB

		sharedCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("shared cache initialization failed, continuing without it")
		} else {
			s.shared = sharedCache
			shared = sharedCache
			s.DeferClose(func() error { return s.shared.Close() })
		}
	}

	animator, err := render.NewAnimator(engine, s.table, s.cfg.AnimationCacheSize, shared, s.logger)
	if err != nil {
		return fmt.Errorf("initialize animator: %w", err)
	}
	s.animator = animator

	return nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Handle("/metrics", telemetry.Handler())

	s.router.Get("/timer.gif", s.handleTimerGIF)
	s.router.Get("/timer.png", s.handleTimerPNG)
}
