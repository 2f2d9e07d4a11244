// Package server exposes a loform.Service over HTTP: JSON endpoints for field
// trees and reference options, and a WebSocket endpoint per editing session.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/goliatone/go-loform"
)

const shutdownTimeout = 10 * time.Second

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithAllowedOrigins lists the browser origins allowed to call the API and
// open sessions. "*" allows any origin. Without origins JSON endpoints answer
// any origin while sessions accept same-origin handshakes only.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, origins...)
	}
}

// Server routes HTTP requests to a loform.Service.
type Server struct {
	svc     *loform.Service
	logger  *slog.Logger
	metrics http.Handler
	origins []string
	handler http.Handler
}

// New builds the router for svc.
func New(svc *loform.Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/api/objects/{type}", func(r chi.Router) {
		r.Get("/fields", s.handleFields)
		r.Get("/options", s.handleOptions)
		r.Get("/session", s.handleSession)
	})

	s.handler = cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}).Handler(r)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// originPatterns converts allowed origins into the host patterns the
// WebSocket handshake checks.
func (s *Server) originPatterns() []string {
	patterns := make([]string, 0, len(s.origins))
	for _, origin := range s.origins {
		if origin == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
