// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tbourn/go-warehouse-backend/docs"
	"github.com/tbourn/go-warehouse-backend/internal/config"
	"github.com/tbourn/go-warehouse-backend/internal/crm"
	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/http/handlers"
	"github.com/tbourn/go-warehouse-backend/internal/http/middleware"
	"github.com/tbourn/go-warehouse-backend/internal/notify"
	"github.com/tbourn/go-warehouse-backend/internal/repo"
	"github.com/tbourn/go-warehouse-backend/internal/services"
	"github.com/tbourn/go-warehouse-backend/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// bindingRepoShim adapts the repository free functions to the
// services.BindingRepo interface expected by the ActivationService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type bindingRepoShim struct{}

// GetBinding proxies repo.GetBinding.
func (bindingRepoShim) GetBinding(ctx context.Context, db *gorm.DB, chatID string) (*domain.WarehouseBinding, error) {
	return repo.GetBinding(ctx, db, chatID)
}

// UpsertActive proxies repo.UpsertActive.
func (bindingRepoShim) UpsertActive(ctx context.Context, db *gorm.DB, chatID, warehouseID string, now time.Time) (*domain.WarehouseBinding, error) {
	return repo.UpsertActive(ctx, db, chatID, warehouseID, now)
}

// MarkInactive proxies repo.MarkInactive.
func (bindingRepoShim) MarkInactive(ctx context.Context, db *gorm.DB, chatID string, now time.Time) (*domain.WarehouseBinding, error) {
	return repo.MarkInactive(ctx, db, chatID, now)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and readiness endpoints, and
// then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with credential/PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per chat/IP, bypass on replay)
//  9. CORS, gzip, and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, validator crm.Validator, sessions session.Store, notifier notify.Notifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (activation codes, deep-link
	// tokens, and webhook signatures are scrubbed by default)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, chatID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, chatID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per chat/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByChatOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Chat-ID", "X-Webhook-Signature", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Chat-ID", "X-Webhook-Signature", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Response compression for API payloads (/metrics is registered above
	// and is served uncompressed for scraper compatibility)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Security headers. Binding responses are keyed by the X-Chat-ID header,
	// so shared caches must not store them; infra surfaces stay cacheable.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		SkipPaths:    []string{"/docs", "/health", "/ready", "/metrics"},
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Readiness: the binding store and the pending-activation store must both answer
	r.GET("/ready", readiness(db, sessions))

	// Swagger UI (off unless explicitly enabled)
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/gateway/store
	actSvc := services.NewActivationService(db, bindingRepoShim{}, validator, sessions)
	actSvc.PendingTTL = cfg.Activation.PendingTTL
	actSvc.ConflictPolicy = cfg.Activation.ConflictPolicy

	orderSvc := services.NewOrderService(db, notifier)
	h := handlers.New(actSvc, orderSvc, cfg.Webhook.Secret)
	h.IdempotencyTTL = cfg.IdempotencyTTL

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Activation lifecycle
		api.POST("/activation/begin", h.BeginActivation)
		api.POST("/activation/code", h.SubmitActivationCode)
		api.POST("/activation/link", h.ActivateViaDeepLink)
		api.POST("/activation/deactivate", h.Deactivate)

		// Bindings
		api.GET("/bindings/me", h.GetMyBinding)
		api.GET("/bindings", h.ListBindings)

		// CRM order webhook (config validation guarantees a secret when enabled)
		if cfg.Webhook.Enabled {
			api.POST("/webhooks/orders", h.OrderWebhook)
		}
	}
}

// readiness reports whether the process can serve traffic. The SQLite handle
// must answer a ping and the pending-activation store must answer a lookup;
// a session miss counts as healthy, only transport faults mark it down.
func readiness(db *gorm.DB, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "storage"})
			return
		}

		if _, err := sessions.Get(ctx, "readiness-probe"); err != nil && !errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "session_store"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
