package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/vunnam-pos/vunnam-pos/internal/app"
	"github.com/vunnam-pos/vunnam-pos/internal/assistant"
	"github.com/vunnam-pos/vunnam-pos/internal/auth"
	"github.com/vunnam-pos/vunnam-pos/internal/catalog"
	"github.com/vunnam-pos/vunnam-pos/internal/customers"
	"github.com/vunnam-pos/vunnam-pos/internal/inventory"
	"github.com/vunnam-pos/vunnam-pos/internal/ledger"
	"github.com/vunnam-pos/vunnam-pos/internal/platform/db"
	"github.com/vunnam-pos/vunnam-pos/internal/pos"
	"github.com/vunnam-pos/vunnam-pos/internal/purchasing"
	"github.com/vunnam-pos/vunnam-pos/internal/reports"
	"github.com/vunnam-pos/vunnam-pos/internal/settings"
	"github.com/vunnam-pos/vunnam-pos/jobs"
)

func main() {
	_ = godotenv.Load()

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

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, logger)
	if err := ledgerService.Bootstrap(ctx); err != nil {
		logger.Error("bootstrap ledger accounts", slog.Any("error", err))
		os.Exit(1)
	}

	reportsRepo := reports.NewRepository(pool)
	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reportsRepo, reportsCache)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	posService := pos.NewService(pos.NewRepository(pool, inventoryRepo), ledgerService, reportsService, logger)
	purchasingService := purchasing.NewService(purchasing.NewRepository(pool, inventoryRepo), ledgerService, reportsService, logger)
	customersService := customers.NewService(customers.NewRepository(pool))
	settingsRepo := settings.NewRepository(pool)
	authService := auth.NewService(auth.NewRepository(pool))

	var assistantHandler *assistant.Handler
	currency := "INR"
	if s, err := settingsRepo.Get(ctx); err == nil {
		currency = s.Currency
	} else {
		logger.Warn("load settings", slog.Any("error", err))
	}
	assistantService := assistant.NewService(reportsService, cfg.OpenAIAPIKey, currency)
	assistantHandler = assistant.NewHandler(logger, assistantService)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       auth.NewHandler(logger, authService),
		CatalogHandler:    catalog.NewHandler(logger, catalogService),
		InventoryHandler:  inventory.NewHandler(logger, inventoryService),
		POSHandler:        pos.NewHandler(logger, posService),
		PurchasingHandler: purchasing.NewHandler(logger, purchasingService),
		CustomersHandler:  customers.NewHandler(logger, customersService),
		SettingsHandler:   settings.NewHandler(logger, settingsRepo),
		LedgerHandler:     ledger.NewHandler(logger, ledgerService),
		ReportsHandler:    reports.NewHandler(logger, reportsService),
		AssistantHandler:  assistantHandler,
		JobHandler:        jobs.NewHandler(jobsClient, inspector, logger),
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
