package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veridian-grc/veridian/internal/app"
	"github.com/veridian-grc/veridian/internal/audit"
	"github.com/veridian-grc/veridian/internal/cache"
	"github.com/veridian-grc/veridian/internal/dashboard"
	"github.com/veridian-grc/veridian/internal/observability"
	"github.com/veridian-grc/veridian/internal/platform/db"
	"github.com/veridian-grc/veridian/internal/ratelimit"
	"github.com/veridian-grc/veridian/internal/shared"
	"github.com/veridian-grc/veridian/internal/systems"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL)

	// The in-process stores serve a single instance; SHARED_STATE switches
	// both onto redis so scaled deployments share counters and entries.
	var cacheStore cache.Store = cache.NewMemoryStore()
	var limitStore ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.SharedState {
		cacheStore = cache.NewRedisStore(redisClient)
		limitStore = ratelimit.NewRedisStore(redisClient)
	}
	appCache := cache.New(cacheStore, cache.WithMetrics(metrics))
	limiter := ratelimit.New(limitStore, ratelimit.DefaultConfig())

	exempt := cfg.ExemptPrincipals()
	limitOpts := []ratelimit.MiddlewareOption{
		ratelimit.WithLogger(logger),
		ratelimit.WithMetrics(metrics),
		ratelimit.WithSkip(func(r *http.Request) bool {
			tc := shared.TenantFromContext(r.Context())
			if !tc.Authenticated() {
				return false
			}
			_, ok := exempt[tc.PrincipalID]
			return ok
		}),
	}

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(auditService, limiter, logger, limitOpts...)

	dashboardRepo := dashboard.NewPGRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, appCache)
	dashboardHandler := dashboard.NewHandler(dashboardService, limiter, logger, limitOpts...)

	systemsRepo := systems.NewPGRepository(pool)
	systemsService := systems.NewService(systemsRepo, appCache, auditRepo, logger)
	systemsHandler := systems.NewHandler(systemsService, limiter, logger, limitOpts...)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		Metrics:          metrics,
		SystemsHandler:   systemsHandler,
		DashboardHandler: dashboardHandler,
		AuditHandler:     auditHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
