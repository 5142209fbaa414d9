package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/SscSPs/inventory_management_app/cmd/docs"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/platform/config"
	"github.com/SscSPs/inventory_management_app/internal/platform/metrics"
)

const apiBasePath = "/api"

// RegisterTransactionRoutes sets up the routes served by the transaction service.
func RegisterTransactionRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	registerCommonRoutes(r, cfg)

	api := r.Group(apiBasePath)
	registerTransactionRoutes(api, services.Transaction)
	if services.Reconciler != nil {
		registerStockAdjustmentRoutes(api, services.Reconciler)
	}
}

// RegisterProductRoutes sets up the routes served by the product service.
func RegisterProductRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	registerCommonRoutes(r, cfg)

	api := r.Group(apiBasePath)
	registerProductRoutes(api, services.Product)
}

func registerCommonRoutes(r *gin.Engine, cfg *config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = apiBasePath
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
