// Package api serves the build pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz        liveness and build information
//	GET  /builders       registered builder type names
//	GET  /styles         style locations of the project pack
//	GET  /structures     structure locations of the project pack
//	POST /build          build one seed and return the requested formats
//	POST /build/batch    build many seeds and return their materials
//	POST /export         build one seed and export it to the architect
//
// Errors are JSON objects {"code", "error"} whose HTTP status follows the
// structured error code.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/worksite/pkg/export"
	"github.com/matzehuels/worksite/pkg/observability"
	"github.com/matzehuels/worksite/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address when Config.Addr is empty.
	DefaultAddr = ":8080"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 60 * time.Second

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes = 4 << 20

	// MaxBatchSeeds limits /build/batch.
	MaxBatchSeeds = 256
)

// Config configures a Server.
type Config struct {
	Addr    string
	Timeout time.Duration

	// Exporter is optional. Without it /export answers 501.
	Exporter *export.Exporter
}

// Server exposes a pipeline runner over HTTP.
type Server struct {
	runner   *pipeline.Runner
	exporter *export.Exporter
	logger   *log.Logger
	cfg      Config
	router   chi.Router
}

// New creates a server for runner.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		exporter: cfg.Exporter,
		logger:   logger,
		cfg:      cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/builders", s.handleBuilders)
	r.Get("/styles", s.handleStyles)
	r.Get("/structures", s.handleStructures)
	r.Post("/build", s.handleBuild)
	r.Post("/build/batch", s.handleBatch)
	r.Post("/export", s.handleExport)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// instrument logs each request and reports it to the server hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Server()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"id", middleware.GetReqID(r.Context()),
			"duration", elapsed)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
