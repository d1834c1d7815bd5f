package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evyataryagoni/iplocator/internal/cache"
	"github.com/evyataryagoni/iplocator/internal/config"
	"github.com/evyataryagoni/iplocator/internal/geoclient"
	"github.com/evyataryagoni/iplocator/internal/handler"
	"github.com/evyataryagoni/iplocator/internal/limiter"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/router"
	"github.com/evyataryagoni/iplocator/internal/service"
	"github.com/evyataryagoni/iplocator/internal/store"
)

const shutdownTimeout = 10 * time.Second

// @title           IP Locator API
// @version         1.0
// @description     Users and IP geolocation records, resolved through ip-api.com and cached.
// @termsOfService  http://swagger.io/terms/

// @contact.name   Evyatar Yagoni
// @contact.email  evyatar@example.com

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
func main() {
	// Load configuration
	appConfig := config.Load()

	// Initialize components
	appLogger := setupLogger(appConfig)
	catalog := setupMessages(appConfig, appLogger)
	metricsCollector := metrics.New(prometheus.DefaultRegisterer)

	dataStore := setupDataStore(appConfig, metricsCollector, appLogger)
	defer dataStore.Close()

	locationCache := setupCache(appConfig, metricsCollector, appLogger)
	defer locationCache.Close()

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	upstream := geoclient.New(appConfig.UpstreamBaseURL, appConfig.UpstreamTimeout,
		geoclient.WithMetrics(metricsCollector))

	// Build application layers
	locationService := service.NewLocationService(dataStore, locationCache, upstream, catalog, metricsCollector, appLogger)
	userService := service.NewUserService(dataStore, locationCache, catalog, metricsCollector, appLogger)

	appRouter := router.SetupRouter(router.Dependencies{
		Locations:   handler.NewLocationHandler(locationService, catalog),
		Users:       handler.NewUserHandler(userService, catalog),
		RateLimiter: rateLimiter,
		Messages:    catalog,
		Metrics:     metricsCollector,
		Logger:      appLogger,
	})

	// Start server
	if err := startServer(appConfig, appRouter, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:   appConfig.LogLevel,
		Pretty:  appConfig.LogPretty,
		Service: "iplocator",
	})
	logger.SetGlobal(appLogger)

	appLogger.Info().Msg("Starting IP Locator Server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("db_driver", appConfig.DBDriver).
		Str("cache_type", appConfig.CacheType).
		Dur("cache_ttl", appConfig.CacheTTL).
		Str("upstream", appConfig.UpstreamBaseURL).
		Dur("upstream_timeout", appConfig.UpstreamTimeout).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

func setupMessages(appConfig *config.Config, log *logger.Logger) *messages.Catalog {
	catalog, err := messages.Load(appConfig.MessagesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appConfig.MessagesPath).Msg("Failed to load message catalog")
	}
	return catalog
}

// setupDataStore opens the database (MySQL or Postgres) and migrates the schema
func setupDataStore(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) store.Store {
	dataStore, err := store.Open(store.Options{
		Driver:      appConfig.DBDriver,
		DSN:         appConfig.DatabaseDSN,
		AutoMigrate: appConfig.DBAutoMigrate,
		Metrics:     m,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", appConfig.DBDriver).Msg("Failed to initialize database")
	}

	log.Info().Str("driver", appConfig.DBDriver).Msg("Database initialized")
	return dataStore
}

// setupCache initializes the location cache
// Supports in-memory, Redis and disabled caching
func setupCache(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) cache.LocationCache {
	locationCache, err := cache.New(cache.Config{
		Type:          appConfig.CacheType,
		Size:          appConfig.CacheSize,
		TTL:           appConfig.CacheTTL,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize location cache")
	}

	log.Info().Str("type", appConfig.CacheType).Dur("ttl", appConfig.CacheTTL).Msg("Location cache initialized")
	return cache.WithMetrics(locationCache, m)
}

// setupRateLimiter initializes the rate limiter
// Supports in-memory and Redis-based rate limiting
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	effectiveRate := appConfig.RequestsPerSecond()

	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:              appConfig.RateLimitType,
		RequestsPerSecond: effectiveRate,
		RedisAddr:         appConfig.RedisAddr,
		RedisPassword:     appConfig.RedisPassword,
		RedisDB:           appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Float64("requests_per_second", effectiveRate).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// startServer serves until SIGINT/SIGTERM, then drains in-flight requests
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) error {
	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("api_endpoint", "http://localhost:"+appConfig.Port+"/api/location?ip=<ip>").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Str("swagger", "http://localhost:"+appConfig.Port+"/swagger/index.html").
			Msg("Server is running")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
