package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/adapters/notifier"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/handlers"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/metrics"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/middleware"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/platform/config"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/repositories/database/pgsql"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/pkg/cache"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/pkg/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var skipMigrations bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !skipMigrations {
				logger.Info("Running database migrations...")
				if err := database.RunMigrations(cfg.DatabaseURL, migrationSource(cfg), database.MigrateUp, logger); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")

	return serveCmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbPool, err := openPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	opts := handlers.RouteOptions{DB: dbPool, IdempotencyTTL: cfg.IdempotencyTTL}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}
	var limiterStore limiter.Store = memory.NewStore()

	if cfg.RedisURL != "" {
		redisClient, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.Error("Error closing redis client", slog.String("error", cerr.Error()))
			}
		}()
		opts.Idempotency = redisClient
		logger.Info("Idempotency keys enabled", slog.Duration("ttl", cfg.IdempotencyTTL))

		limiterStore, err = sredis.NewStoreWithOptions(redisClient.Redis(), limiter.StoreOptions{Prefix: "sacco:ratelimit"})
		if err != nil {
			return fmt.Errorf("failed to create rate limit store: %w", err)
		}
	} else {
		logger.Warn("REDIS_URL not set. Idempotency-Key replay is disabled.")
	}

	var serviceOptions []services.Option
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		serviceOptions = append(serviceOptions, services.WithMetrics(metrics.NewWorkflowMetrics(registry)))
		opts.Metrics = registry
	}

	opts.Limiter = limiter.New(limiterStore, rate)

	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), notifier.NewLogNotifier(), serviceOptions...)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, container, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
