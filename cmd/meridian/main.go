package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian-pos/meridian-pos/internal/app"
	"github.com/meridian-pos/meridian-pos/internal/catalog"
	"github.com/meridian-pos/meridian-pos/internal/customers"
	"github.com/meridian-pos/meridian-pos/internal/inventory"
	"github.com/meridian-pos/meridian-pos/internal/license"
	"github.com/meridian-pos/meridian-pos/internal/platform/cache"
	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/sales"
	"github.com/meridian-pos/meridian-pos/internal/settings"
	"github.com/meridian-pos/meridian-pos/internal/users"
)

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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	settingsService := settings.NewService(settings.NewPGRepository(pool), logger)

	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalog.NewRepository(pool), catalogCache, logger)

	usersService := users.NewService(users.NewRepository(pool))
	actorMW := users.Middleware{Service: usersService, Logger: logger}

	licenseService := license.NewService(license.NewRepository(pool))
	licenseGate := license.Middleware{Service: licenseService, Logger: logger}

	customersService := customers.NewService(customers.NewRepository(pool))

	inventoryService := inventory.NewService(pool, settingsService, catalogService, logger)

	salesRepo := sales.NewRepository(pool, inventoryService.Ledger())
	salesService := sales.NewService(salesRepo, catalogService, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Pool:             pool,
		ActorMiddleware:  actorMW,
		LicenseGate:      licenseGate,
		LicenseHandler:   license.NewHandler(logger, licenseService),
		UsersHandler:     users.NewHandler(logger, usersService, licenseService, actorMW),
		CatalogHandler:   catalog.NewHandler(logger, catalogService, actorMW),
		CustomersHandler: customers.NewHandler(logger, customersService),
		InventoryHandler: inventory.NewHandler(logger, inventoryService, actorMW),
		SalesHandler:     sales.NewHandler(logger, salesService),
		SettingsHandler:  settings.NewHandler(logger, settingsService, actorMW.RequireRole(users.RoleAdmin, users.RoleRoot)),
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
