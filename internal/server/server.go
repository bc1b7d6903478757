// Package server exposes the cleanup pipelines and the diff adapter over
// HTTP for the editor and import collaborators.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/regtidy/internal/logger"
	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
)

// Options configures the server.
type Options struct {
	// Config is the base pipeline configuration. Requests may override
	// the mode, prettifying and the file server host.
	Config *regtidy.Config
	// MaxBodyBytes caps request bodies. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// SlowDiffThreshold overrides the diff adapter's slow threshold.
	SlowDiffThreshold time.Duration
	// APIKey, when set, is required as a Bearer token on /api routes.
	APIKey string
}

// DefaultMaxBodyBytes is the request size limit when none is configured.
const DefaultMaxBodyBytes = 10 << 20

// Server is the HTTP adapter.
type Server struct {
	router chi.Router
	opts   Options
}

// New creates and configures the HTTP server.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = regtidy.DefaultConfig()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{opts: opts}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.opts.APIKey != "" {
			r.Use(AuthMiddleware(s.opts.APIKey))
		}
		r.Use(BodyLimit(s.opts.MaxBodyBytes))

		r.Post("/clean", s.handleClean)
		r.Post("/cleanup", s.handleCleanup)
		r.Post("/diff", s.handleDiff)
		r.Post("/prettify", s.handlePrettify)
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
