// Package server is the HTTP viewer for converted diagrams.
//
// Routes:
//
//	GET  /                    viewer page for the served document
//	GET  /diagram.mmd         Mermaid text of the served document
//	POST /api/convert         convert the request body, store the result
//	GET  /api/diagrams/{id}   stored diagram in its output format
//	GET  /view/{id}           viewer page for a stored diagram
//	GET  /healthz             liveness and build information
//
// Stored diagrams live in a [cache.Cache] under [cache.Keyer.DiagramKey]
// so several server instances can share them through Redis.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spdx2mermaid/pkg/cache"
	"github.com/matzehuels/spdx2mermaid/pkg/observability"
	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds uploaded documents.
const DefaultMaxBodyBytes = 32 << 20

// Config configures a Server.
type Config struct {
	// Runner performs conversions. Required.
	Runner *pipeline.Runner

	// Store holds diagrams created through the API. Defaults to an
	// in-memory cache.
	Store cache.Cache

	// Keyer names stored diagrams. Defaults to the DefaultKeyer.
	Keyer cache.Keyer

	// Defaults are the options applied before query parameters.
	Defaults pipeline.Options

	// Document is served at / and /diagram.mmd when set.
	Document     []byte
	DocumentName string

	MaxBodyBytes int64
	Logger       *log.Logger
}

// Server serves the viewer and conversion API.
type Server struct {
	runner   *pipeline.Runner
	store    cache.Cache
	keyer    cache.Keyer
	defaults pipeline.Options
	maxBody  int64
	logger   *log.Logger

	name    string
	current []byte // Mermaid text of Document
	router  chi.Router
}

// New builds a server. When cfg.Document is set it is converted once up
// front, so a broken document fails startup instead of the first request.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("server: runner is required")
	}
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		keyer:    cfg.Keyer,
		defaults: cfg.Defaults,
		maxBody:  cfg.MaxBodyBytes,
		logger:   cfg.Logger,
		name:     cfg.DocumentName,
	}
	if s.store == nil {
		s.store = cache.NewMemoryCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	if cfg.Document != nil {
		opts := s.defaults
		opts.Format = pipeline.FormatMermaid
		opts.Filename = cfg.DocumentName
		res, err := s.runner.Convert(ctx, cfg.Document, opts)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", cfg.DocumentName, err)
		}
		s.current = res.Artifact
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Get("/diagram.mmd", s.handleCurrentDiagram)
	r.Get("/healthz", s.handleHealth)
	r.Get("/view/{id}", s.handleView)
	r.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/diagrams/{id}", s.handleDiagram)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe reports each request to the server hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.Server().OnRequest(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
