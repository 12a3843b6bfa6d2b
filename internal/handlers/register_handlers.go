package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/cmd/docs"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/middleware"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/platform/config"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOptions carries the optional infrastructure the routes are wired with.
// Nil fields disable the corresponding feature.
type RouteOptions struct {
	DB             Pinger
	Limiter        *limiter.Limiter
	Idempotency    cache.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        prometheus.Gatherer
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	RegisterValidators()

	// Add health check route
	r.GET("/health", getHealth(opts.DB))

	if cfg.MetricsEnabled && opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{})))
	}

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, opts)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	v1Middleware := []gin.HandlerFunc{}
	if opts.Limiter != nil {
		v1Middleware = append(v1Middleware, middleware.RateLimit(opts.Limiter))
	}
	v1Middleware = append(v1Middleware, middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	v1 := r.Group("/api/v1", v1Middleware...)

	// Postings and votes replay their stored response when retried with the same key
	var postMiddleware []gin.HandlerFunc
	if opts.Idempotency != nil {
		postMiddleware = append(postMiddleware, middleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL))
	}

	RegisterLedgerRoutes(v1, services.Ledger, postMiddleware...)
	RegisterGuarantorRoutes(v1, services.Guarantor)
	RegisterCommitteeRoutes(v1, services.Committee, postMiddleware...)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
