package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"firebasebindings/internal/binding"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	config         *binding.Config
	handlers       *Handlers
	metricsHandler http.Handler
	logger         binding.Logger
	metrics        binding.Metrics
}

// NewServer creates a new HTTP server. metricsHandler is mounted on the
// configured metrics path when metrics are enabled; it may be nil.
func NewServer(config *binding.Config, handlers *Handlers, metricsHandler http.Handler, logger binding.Logger, metrics binding.Metrics) *Server {
	return &Server{
		config:         config,
		handlers:       handlers,
		metricsHandler: metricsHandler,
		logger:         logger.With("component", "server"),
		metrics:        metrics,
	}
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	h := s.handlers

	mux.HandleFunc("GET /health", h.HealthCheckHandler)
	mux.HandleFunc("GET /v1/keys/encode", h.EncodeKeyHandler)
	mux.HandleFunc("GET /v1/keys/decode", h.DecodeKeyHandler)
	mux.HandleFunc("GET /v1/identifiers/snake", h.SnakeCaseHandler)
	mux.HandleFunc("GET /v1/identifiers/title", h.TitleCaseHandler)
	mux.HandleFunc("POST /v1/auth/verify", h.VerifyHandler)
	mux.HandleFunc("/v1/db/", h.DatabaseHandler)
	mux.HandleFunc("POST /v1/analytics/events", h.AnalyticsEventHandler)

	if s.config.Metrics.Enabled && s.metricsHandler != nil {
		mux.Handle("GET "+s.config.Metrics.Path, s.metricsHandler)
	}

	return s.withMiddleware(mux)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	s.logger.Info("starting HTTP server", "address", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("graceful shutdown failed, forcing close", "error", err)
			if closeErr := s.httpServer.Close(); closeErr != nil {
				s.logger.Error("force close failed", "error", closeErr)
				return closeErr
			}
			return err
		}
		s.logger.Info("HTTP server stopped successfully")
	}

	return nil
}

// withMiddleware applies middleware to handlers
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = s.withBodyLimit(handler)
	handler = s.withLogging(handler)
	handler = s.withMetrics(handler)
	handler = s.withCORS(handler)
	handler = s.withSecurityHeaders(handler)

	return handler
}

func (s *Server) withBodyLimit(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limit := s.config.Server.MaxBodyBytes; limit > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		handler.ServeHTTP(w, r)
	})
}

// withLogging adds request logging middleware
func (s *Server) withLogging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		handler.ServeHTTP(wrapper, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
			"user_agent", r.UserAgent(),
			"remote_addr", r.RemoteAddr)
	})
}

// withMetrics records every request under its route pattern, which the mux
// sets on the request while routing.
func (s *Server) withMetrics(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		handler.ServeHTTP(wrapper, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTPRequest(r.Method, route, wrapper.statusCode, time.Since(start))
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// withSecurityHeaders adds security headers
func (s *Server) withSecurityHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")

		handler.ServeHTTP(w, r)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
