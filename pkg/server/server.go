// Package server exposes a loaded star map over HTTP.
//
// The API serves the latest layout published by a [pipeline.Loader], renders
// it on demand, answers system lookups and searches, and pushes reload
// notifications to websocket clients:
//
//	GET  /api/layout          layout document (JSON)
//	GET  /api/layout.{format} rendered artifact (svg, dot, png, pdf, json)
//	GET  /api/systems/{id}    system detail panel
//	GET  /api/search?q=term   name search
//	POST /api/reload          re-run the pipeline, bypassing the dataset cache
//	GET  /api/events          websocket stream of reload outcomes
//	GET  /metrics             Prometheus metrics, when configured
//	GET  /healthz             liveness
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/auroramap/pkg/pipeline"
)

// Default timeouts, matching the config defaults.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithConfig sets the listener settings.
func WithConfig(cfg Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// Server is the HTTP front end of a loader.
type Server struct {
	loader  *pipeline.Loader
	runner  *pipeline.Runner
	logger  *log.Logger
	metrics http.Handler
	cfg     Config

	router   chi.Router
	renders  singleflight.Group
	upgrader websocket.Upgrader
	http     *http.Server
}

// New creates a server for loader. Renders run through runner, which may
// share its cache with the loader's.
func New(loader *pipeline.Loader, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		loader: loader,
		runner: runner,
		logger: log.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.ReadTimeout == 0 {
		s.cfg.ReadTimeout = DefaultReadTimeout
	}
	if s.cfg.WriteTimeout == 0 {
		s.cfg.WriteTimeout = DefaultWriteTimeout
	}
	if s.cfg.ShutdownTimeout == 0 {
		s.cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Get("/layout.{format}", s.handleArtifact)
		r.Get("/systems/{id}", s.handleSystem)
		r.Get("/search", s.handleSearch)
		r.Post("/reload", s.handleReload)
		r.Get("/events", s.handleEvents)
	})
	s.router = r
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
