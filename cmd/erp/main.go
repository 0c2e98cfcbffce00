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

	"github.com/Ikki-Group/erp-sub001/internal/app"
	"github.com/Ikki-Group/erp-sub001/internal/auth"
	"github.com/Ikki-Group/erp-sub001/internal/dashboard"
	"github.com/Ikki-Group/erp-sub001/internal/locations"
	"github.com/Ikki-Group/erp-sub001/internal/observability"
	"github.com/Ikki-Group/erp-sub001/internal/platform/cache"
	"github.com/Ikki-Group/erp-sub001/internal/platform/db"
	"github.com/Ikki-Group/erp-sub001/internal/rbac"
	"github.com/Ikki-Group/erp-sub001/internal/roles"
	"github.com/Ikki-Group/erp-sub001/internal/users"
)

const minSecretBytes = 32

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(cfg.AuthSecret) < minSecretBytes {
		logger.Warn("auth secret is shorter than recommended", slog.Int("bytes", len(cfg.AuthSecret)))
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	hasher := auth.NewHasher(cfg.BcryptCost)
	codec := auth.NewTokenCodec([]byte(cfg.AuthSecret), cfg.AuthTokenTTL.Duration())
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, hasher, codec)

	rbacRepo := rbac.NewRepository(pool)
	var resolver rbac.Resolver = rbac.NewResolver(rbacRepo)
	if cfg.RBACCacheEnabled && redisClient != nil {
		resolver = rbac.NewCachedResolver(resolver, redisClient, cfg.RBACCacheTTL, logger)
	}

	gate := rbac.Middleware{
		Verifier: authService,
		Resolver: resolver,
		Logger:   logger,
		Metrics:  metrics,
	}

	authHandler := auth.NewHandler(logger, authService, app.PermissionAdapter{Resolver: resolver}, metrics)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, hasher)
	usersHandler := users.NewHandler(logger, usersService, gate)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo, resolver, logger)
	rolesHandler := roles.NewHandler(logger, rolesService, gate)

	locationsRepo := locations.NewRepository(pool)
	locationsService := locations.NewService(locationsRepo)
	locationsHandler := locations.NewHandler(logger, locationsService, gate)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, redisClient, cfg.DashboardCacheTTL, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, gate)

	permissionsHandler := rbac.NewPermissionsHandler(logger, resolver, gate)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Gate:               gate,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		LocationsHandler:   locationsHandler,
		DashboardHandler:   dashboardHandler,
		PermissionsHandler: permissionsHandler,
		Metrics:            metrics,
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
