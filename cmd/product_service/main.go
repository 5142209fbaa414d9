package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	_ "github.com/SscSPs/inventory_management_app/cmd/docs"
	"github.com/SscSPs/inventory_management_app/internal/core/services"
	"github.com/SscSPs/inventory_management_app/internal/handlers"
	"github.com/SscSPs/inventory_management_app/internal/platform/bootstrap"
	"github.com/SscSPs/inventory_management_app/internal/platform/config"
	"github.com/SscSPs/inventory_management_app/internal/platform/telemetry"
	"github.com/SscSPs/inventory_management_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/inventory_management_app/pkg/database"
)

const serviceName = "product-service"

// @title Inventory Product Service API
// @version 1.0
// @description Owns the product catalogue and the stock count of every product.

// @host localhost:8081
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

	container := services.NewProductServiceContainer(pgsql.NewProductRepositoryProvider(dbPool))

	r, err := bootstrap.NewEngine(cfg, logger)
	if err != nil {
		logger.Error("Failed to build HTTP engine", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handlers.RegisterProductRoutes(r, cfg, container)

	if err := bootstrap.Run(cfg, logger, r); err != nil {
		logger.Error("Product service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Product service shut down")
}
