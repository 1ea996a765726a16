// Package main provides the entry point for the researcher service server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scholarweave/researcher-service/internal/backfill"
	"github.com/scholarweave/researcher-service/internal/config"
	"github.com/scholarweave/researcher-service/internal/database"
	"github.com/scholarweave/researcher-service/internal/identity"
	"github.com/scholarweave/researcher-service/internal/observability"
	"github.com/scholarweave/researcher-service/internal/recommend"
	"github.com/scholarweave/researcher-service/internal/registries/openalex"
	"github.com/scholarweave/researcher-service/internal/registries/orcid"
	"github.com/scholarweave/researcher-service/internal/repository"
	httpserver "github.com/scholarweave/researcher-service/internal/server/http"
	"github.com/scholarweave/researcher-service/internal/topics"
)

// metricsNamespace prefixes every Prometheus metric exported by the service.
const metricsNamespace = "researcher_service"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("researcher-service server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	metrics := observability.NewMetrics(metricsNamespace)

	// Repository.
	researcherRepo := repository.NewPgResearcherRepository(db)

	// External registry clients.
	orcidClient := orcid.New(orcid.Config{
		BaseURL:   cfg.Registries.ORCID.BaseURL,
		Timeout:   cfg.Registries.ORCID.Timeout,
		RateLimit: cfg.Registries.ORCID.RateLimit,
		BurstSize: cfg.Registries.ORCID.BurstSize,
		MaxRows:   cfg.Registries.ORCID.MaxResults,
	})

	openAlexClient := openalex.New(openalex.Config{
		BaseURL:   cfg.Registries.OpenAlex.BaseURL,
		Email:     cfg.Registries.OpenAlex.Email,
		Timeout:   cfg.Registries.OpenAlex.Timeout,
		RateLimit: cfg.Registries.OpenAlex.RateLimit,
		BurstSize: cfg.Registries.OpenAlex.BurstSize,
		MaxWorks:  cfg.Registries.OpenAlex.MaxWorks,
	})

	// Domain services.
	resolver := identity.NewResolver(orcidClient, openAlexClient, logger)
	aggregator := topics.NewAggregator(openAlexClient, logger)
	runner := backfill.NewRunner(backfill.Config{
		TopicDelay:    cfg.Backfill.TopicDelay,
		IdentityDelay: cfg.Backfill.IdentityDelay,
	}, researcherRepo, db, resolver, aggregator, metrics, logger)
	suggestions := recommend.NewService(researcherRepo, logger)

	// HTTP server.
	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AdminToken:      cfg.Admin.Token,
	}
	httpSrv := httpserver.NewServer(httpCfg, suggestions, runner, db, metrics, logger)

	if cfg.Admin.Token == "" {
		logger.Warn().Msg("admin token is not configured, admin endpoints will reject all requests")
	}

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	// Start HTTP REST API server in background.
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start metrics server if configured.
	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("researcher-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down researcher-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("researcher-service shutdown complete")
	return nil
}
