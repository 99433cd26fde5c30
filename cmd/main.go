package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/homebound/internal/api"
	"github.com/UnknownOlympus/homebound/internal/config"
	"github.com/UnknownOlympus/homebound/internal/geocoding"
	"github.com/UnknownOlympus/homebound/internal/metrics"
	"github.com/UnknownOlympus/homebound/internal/report"
	"github.com/UnknownOlympus/homebound/internal/repository"
	"github.com/UnknownOlympus/homebound/internal/routing"
	"github.com/UnknownOlympus/homebound/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// providerNone disables a routing mode.
const providerNone = "none"

// version is set at build time with -ldflags.
var version = "dev"

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	if cfg.SentryDSN != "" {
		if err := report.SetupSentry(cfg.SentryDSN, cfg.Env, version); err != nil {
			log.Fatalf("Failed to initialize Sentry: %v", err)
		}
		defer report.FlushSentry()
	}

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Type, err)
	}
	defer closeStore()

	transit, err := newRoutingProvider(cfg.Transit, cfg, logger, routing.NewTransitProvider)
	if err != nil {
		log.Fatalf("Failed to create transit provider: %v", err)
	}
	taxi, err := newRoutingProvider(cfg.Taxi, cfg, logger, routing.NewTaxiProvider)
	if err != nil {
		log.Fatalf("Failed to create taxi provider: %v", err)
	}

	// Create geocoding provider using factory pattern based on configuration
	geocoder, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Provider),
		APIKey:    cfg.Geocoder.Key,
		BaseURL:   cfg.Geocoder.URL,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	logger.InfoContext(ctx, "Providers initialized",
		"transit", cfg.Transit.Provider, "taxi", cfg.Taxi.Provider, "geocoder", cfg.Geocoder.Provider)

	trips := service.NewTripService(
		logger,
		transit,
		taxi,
		geocoder,
		repository.NewHomeRepository(store, logger),
		appMetrics,
		cfg.Transit.DefaultFare,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewServer(logger, trips, store, reg).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      2*cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server failed", "error", err)
			stop()
		}
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "HTTP server shutdown failed", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

// homeStore is a key-value backend that can also report its health.
type homeStore interface {
	repository.Store
	repository.Pinger
}

// newStore opens the configured key-value backend. The returned func releases it.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (homeStore, func(), error) {
	switch cfg.Store.Type {
	case "file":
		store, err := repository.NewFileStore(cfg.Store.Path, logger)
		return store, func() {}, err
	case "postgres":
		dtb, err := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresStore(dtb, logger)
		if err = store.EnsureSchema(ctx); err != nil {
			dtb.Close()
			return nil, nil, err
		}
		return store, dtb.Close, nil
	case "redis":
		client, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() {
			if cerr := client.Close(); cerr != nil {
				logger.Error("Failed to close redis client", "error", cerr)
			}
		}
		return repository.NewRedisStore(client, logger), closeClient, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store type: %s", cfg.Store.Type)
	}
}

// newRoutingProvider builds one mode's provider, or nil when the mode is disabled.
func newRoutingProvider(
	provider config.ProviderConfig,
	cfg *config.Config,
	logger *slog.Logger,
	factory func(routing.ProviderConfig) (routing.Provider, error),
) (routing.Provider, error) {
	if provider.Provider == providerNone {
		logger.Warn("Routing provider disabled by configuration")
		return nil, nil
	}

	return factory(routing.ProviderConfig{
		Type:      routing.ProviderType(provider.Provider),
		APIKey:    provider.Key,
		BaseURL:   provider.URL,
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.RequestTimeout,
		Logger:    logger,
	})
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
