package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	_ "github.com/SscSPs/inventory_management_app/cmd/docs"
	"github.com/SscSPs/inventory_management_app/internal/adapters/locking"
	"github.com/SscSPs/inventory_management_app/internal/adapters/stockclient"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/core/services"
	"github.com/SscSPs/inventory_management_app/internal/handlers"
	"github.com/SscSPs/inventory_management_app/internal/platform/bootstrap"
	"github.com/SscSPs/inventory_management_app/internal/platform/config"
	"github.com/SscSPs/inventory_management_app/internal/platform/telemetry"
	"github.com/SscSPs/inventory_management_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/inventory_management_app/pkg/database"
)

const serviceName = "transaction-service"

// @title Inventory Transaction Service API
// @version 1.0
// @description Records purchases and sales and keeps product stock in step through the product service.

// @host localhost:8082
// @BasePath /api
func main() {
	logger := bootstrap.NewLogger(serviceName)
	decimal.MarshalJSONWithoutQuotes = true
	if err := handlers.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(serviceName)
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("Error shutting down tracer provider", slog.String("error", err.Error()))
		}
	}()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	locker, closeLocker := newProductLocker(cfg, logger)
	defer closeLocker()

	stock := stockclient.New(cfg.ProductServiceURL, cfg.StockClientTimeout)
	repos := pgsql.NewTransactionRepositoryProvider(dbPool)
	container, reconciler := services.NewTransactionServiceContainer(cfg, repos, stock, locker)

	r, err := bootstrap.NewEngine(cfg, logger)
	if err != nil {
		logger.Error("Failed to build HTTP engine", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handlers.RegisterTransactionRoutes(r, cfg, container)

	if err := bootstrap.Run(cfg, logger, r, reconciler.Start); err != nil {
		logger.Error("Transaction service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Transaction service shut down")
}

// newProductLocker picks the lock backend. Run more than one replica only with the redis backend.
func newProductLocker(cfg *config.Config, logger *slog.Logger) (portssvc.ProductLocker, func()) {
	if cfg.LockBackend != config.LockBackendRedis {
		logger.Info("Using in-process product locks")
		return locking.NewMemoryLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Error("Failed to connect to redis", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Using redis product locks", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.LockTTL))
	return locking.NewRedisLocker(client, cfg.LockTTL, logger), func() {
		if err := client.Close(); err != nil {
			logger.Error("Error closing redis client", slog.String("error", err.Error()))
		}
	}
}
