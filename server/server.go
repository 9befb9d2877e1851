// Package server provides HTTP server management and lifecycle handling for
// the interactions API: middleware, routes and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/giygas/interactions-api/config"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	handler     interfaces.HTTPHandler
	config      *config.Config
	rateLimiter *RateLimiter
	stopCleanup context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())

	server := &Server{
		server: &http.Server{
			Handler: router,
			Addr:    cfg.Address + ":" + cfg.Port,
			// Narrative generation may wait on the provider for the full
			// provider timeout, twice in parallel
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.ProviderTimeout() + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:      router,
		handler:     handler,
		config:      cfg,
		rateLimiter: NewRateLimiter(bucketRate, bucketCapacity),
		stopCleanup: stopCleanup,
	}
	go server.rateLimiter.cleanupLoop(cleanupCtx, 30*time.Minute)

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	logger := logging.DefaultLoggingService
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	if logger != nil {
		s.router.Use(logging.LoggingMiddleware(logger.Logger))
	}
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(metrics.Metrics)
	s.router.Use(s.rateLimiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handler.Root)
	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/predict", s.handler.Predict)
		r.Get("/classify", s.handler.Classify)
		r.Post("/reports/{audience}", s.handler.Report)
	})
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server and blocks until it stops. http.ErrServerClosed is
// not reported as an error.
func (s *Server) Start() error {
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.stopCleanup()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
