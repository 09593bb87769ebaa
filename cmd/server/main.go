// Command server runs the warehouse activation backend: the HTTP API that
// binds messaging chats to CRM warehouses and fans incoming orders out to
// the bound chats.
//
// Startup order:
//  1. Load .env (best effort), then the validated environment config
//  2. Configure the global zerolog level and output
//  3. Open SQLite (WAL) and migrate the binding/idempotency schema
//  4. Select the pending-activation store (memory or Redis)
//  5. Construct the CRM gateway client and the notifier
//  6. Start OpenTelemetry (optional) and register the Gin routes
//  7. Serve until SIGINT/SIGTERM, then drain within SHUTDOWN_GRACE
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-warehouse-backend/internal/config"
	"github.com/tbourn/go-warehouse-backend/internal/crm"
	httpapi "github.com/tbourn/go-warehouse-backend/internal/http"
	"github.com/tbourn/go-warehouse-backend/internal/notify"
	"github.com/tbourn/go-warehouse-backend/internal/observability"
	"github.com/tbourn/go-warehouse-backend/internal/repo"
	"github.com/tbourn/go-warehouse-backend/internal/session"
	"github.com/tbourn/go-warehouse-backend/internal/sysutil"
)

// version is stamped via -ldflags "-X main.version=..." on release builds.
var version = "dev"

// @title       Warehouse Activation API
// @version     1.0
// @description Binds messaging chats to CRM warehouses and fans incoming orders out to them.
// @host        localhost:8080
// @BasePath    /api/v1
func main() {
	// .env is a dev convenience; real environment variables always win.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	gin.SetMode(cfg.GinMode)

	// Durable binding store
	db, err := repo.OpenSQLite(cfg.DBPath, repo.PoolOptions{
		MaxOpen:     cfg.DBMaxOpen,
		MaxIdle:     cfg.DBMaxIdle,
		ConnMaxLife: cfg.DBConnMaxLife,
		ConnMaxIdle: cfg.DBConnMaxIdle,
	})
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open sqlite")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	// Transient pending-activation store
	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		rs, err := session.NewRedisStore(cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Session.RedisAddr).Msg("connect redis")
		}
		defer rs.Close()
		sessions = rs
	default:
		sessions = session.NewMemoryStore()
	}

	// CRM validation gateway
	validator := crm.New(crm.Options{
		BaseURL:   cfg.CRM.BaseURL,
		APIToken:  cfg.CRM.APIToken,
		Timeout:   cfg.CRM.Timeout,
		Retries:   cfg.CRM.Retries,
		RetryWait: cfg.CRM.RetryWait,
	})

	// Order notifications go to the structured log until a messaging
	// transport is wired in.
	notifier := notify.NewLogNotifier(log.Logger)

	// Tracing (no-op unless OTEL_ENABLED=true)
	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup otel")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing not enabled")
		}
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, validator, sessions, notifier, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("stopped")
}
