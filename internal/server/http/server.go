// Package httpserver provides the HTTP REST API server for the researcher service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/scholarweave/researcher-service/internal/database"
	"github.com/scholarweave/researcher-service/internal/domain"
	"github.com/scholarweave/researcher-service/internal/observability"
	"github.com/scholarweave/researcher-service/internal/recommend"
)

// SuggestionService scores follow suggestions and serves the topic catalog.
type SuggestionService interface {
	Suggest(ctx context.Context, req recommend.SuggestionRequest) ([]domain.Suggestion, error)
	Topics(ctx context.Context) ([]domain.TopicCount, error)
}

// ResolutionRunner executes backfill batches and one-off resolutions.
type ResolutionRunner interface {
	Run(ctx context.Context, mode domain.BackfillMode) (*domain.BackfillReport, error)
	ResolveManual(ctx context.Context, researcherID, orcid string) (*domain.Researcher, error)
	ResolveAuto(ctx context.Context, researcherID string) (*domain.Researcher, domain.BackfillStatus, error)
}

// HealthReporter reports backing-store health for the probe endpoints.
type HealthReporter interface {
	Health(ctx context.Context) database.HealthStatus
}

// Server is the HTTP REST API server.
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	suggestions SuggestionService
	runner      ResolutionRunner
	health      HealthReporter
	metrics     *observability.Metrics
	adminToken  string
	logger      zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// AdminToken is the shared secret for the /admin routes. When empty,
	// admin endpoints reject every request.
	AdminToken string
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg Config,
	suggestions SuggestionService,
	runner ResolutionRunner,
	health HealthReporter,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		suggestions: suggestions,
		runner:      runner,
		health:      health,
		metrics:     metrics,
		adminToken:  cfg.AdminToken,
		logger:      logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestContextMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints (no auth)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/suggestions", s.suggestHandler)
		r.Get("/topics", s.topicsHandler)
		r.Post("/researchers/{researcherID}/resolve", s.resolveHandler)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminAuthMiddleware)
		r.Post("/backfill", s.backfillHandler)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router returns the configured router, for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.health.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status including database connectivity.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.health.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
