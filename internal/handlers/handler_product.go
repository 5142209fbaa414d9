package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/dto"
	"github.com/SscSPs/inventory_management_app/internal/middleware"
	"github.com/SscSPs/inventory_management_app/internal/utils/pagination"
)

// productHandler handles HTTP requests related to products and their stock.
type productHandler struct {
	productService portssvc.ProductSvcFacade
}

func newProductHandler(ps portssvc.ProductSvcFacade) *productHandler {
	return &productHandler{productService: ps}
}

// registerProductRoutes registers routes related to products.
func registerProductRoutes(rg *gin.RouterGroup, productService portssvc.ProductSvcFacade) {
	h := newProductHandler(productService)

	products := rg.Group("/products")
	{
		products.GET("", h.listProducts)
		products.POST("", h.createProduct)
		products.GET("/:id", h.getProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)
		products.POST("/:id/stock", h.updateStock)
		products.GET("/:id/stock-check", h.checkStock)
	}
}

func productPathID(c *gin.Context, status int) (string, bool) {
	return pathID(c, "id", apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound), status)
}

// productStatus answers 404 for a missing product on the resource routes. The stock routes keep 400.
func productStatus(err error) int {
	if apperrors.KindOf(err) == apperrors.KindProductNotFound {
		return http.StatusNotFound
	}
	return statusForError(err)
}

// listProducts godoc
// @Summary List products
// @Tags products
// @Produce  json
// @Param   name query string false "Name contains"
// @Param   category query string false "Category"
// @Param   minPrice query string false "Minimum price"
// @Param   maxPrice query string false "Maximum price"
// @Param   isActive query bool false "Active flag"
// @Param   page query int false "Page number" default(1)
// @Param   pageSize query int false "Page size" default(10)
// @Param   sortBy query string false "name, price, stock or category" default(name)
// @Param   sortDescending query bool false "Sort descending"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResult[dto.ProductResponse]}
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 500 {object} dto.APIResponse "Error retrieving products"
// @Router /products [get]
func (h *productHandler) listProducts(c *gin.Context) {
	var params dto.ListProductsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, http.StatusBadRequest, apperrors.Validation(err.Error()), apperrors.MsgValidationFailed)
		return
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, statusForError(err), err, "Error retrieving products")
		return
	}
	page := pagination.NewPage(filter.Page, filter.PageSize)
	c.JSON(http.StatusOK, dto.OK("Products retrieved successfully",
		dto.NewPagedResult(dto.ToProductResponses(products), total, page)))
}

// getProduct godoc
// @Summary Get a product by ID
// @Tags products
// @Produce  json
// @Param   id path string true "Product ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProductResponse}
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /products/{id} [get]
func (h *productHandler) getProduct(c *gin.Context) {
	productID, ok := productPathID(c, http.StatusNotFound)
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, productStatus(err), err, "Error retrieving product")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Product retrieved successfully", dto.ToProductResponse(product)))
}

// createProduct godoc
// @Summary Create a product
// @Tags products
// @Accept  json
// @Produce  json
// @Param   product body dto.CreateProductRequest true "Product details"
// @Success 201 {object} dto.APIResponse{data=dto.ProductResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 500 {object} dto.APIResponse "Error creating product"
// @Router /products [post]
func (h *productHandler) createProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, statusForError(err), err, "Error creating product")
		return
	}
	c.JSON(http.StatusCreated, dto.OK("Product created successfully", dto.ToProductResponse(product)))
}

// updateProduct godoc
// @Summary Update a product
// @Tags products
// @Accept  json
// @Produce  json
// @Param   id path string true "Product ID"
// @Param   product body dto.UpdateProductRequest true "Product details"
// @Success 200 {object} dto.APIResponse{data=dto.ProductResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /products/{id} [put]
func (h *productHandler) updateProduct(c *gin.Context) {
	productID, ok := productPathID(c, http.StatusNotFound)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		respondError(c, productStatus(err), err, "Error updating product")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Product updated successfully", dto.ToProductResponse(product)))
}

// deleteProduct godoc
// @Summary Deactivate a product
// @Tags products
// @Produce  json
// @Param   id path string true "Product ID"
// @Success 200 {object} dto.APIResponse{data=bool}
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /products/{id} [delete]
func (h *productHandler) deleteProduct(c *gin.Context) {
	productID, ok := productPathID(c, http.StatusNotFound)
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondError(c, productStatus(err), err, "Error deleting product")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Product deleted successfully", true))
}

// updateStock godoc
// @Summary Move the stock of a product
// @Description Raises or lowers the stock by quantity. Lowering below zero is refused.
// @Tags products
// @Accept  json
// @Produce  json
// @Param   id path string true "Product ID"
// @Param   stock body dto.UpdateStockRequest true "Stock change"
// @Success 200 {object} dto.APIResponse{data=bool}
// @Failure 400 {object} dto.APIResponse "Product not found or insufficient stock"
// @Router /products/{id}/stock [post]
func (h *productHandler) updateStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	productID, ok := productPathID(c, http.StatusBadRequest)
	if !ok {
		return
	}
	var req dto.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	stock, err := h.productService.UpdateStock(c.Request.Context(), productID, req.Quantity, req.IsIncrease)
	if err != nil {
		respondError(c, statusForError(err), err, "Error updating stock")
		return
	}
	logger.Info("Stock updated", slog.String("product_id", productID), slog.Int("stock", stock))
	c.JSON(http.StatusOK, dto.OK("Stock updated successfully", true))
}

// checkStock godoc
// @Summary Check stock availability
// @Tags products
// @Produce  json
// @Param   id path string true "Product ID"
// @Param   requiredQuantity query int true "Units needed"
// @Success 200 {object} dto.APIResponse{data=bool}
// @Failure 400 {object} dto.APIResponse{data=bool} "Product not found or insufficient stock"
// @Router /products/{id}/stock-check [get]
func (h *productHandler) checkStock(c *gin.Context) {
	productID, ok := productPathID(c, http.StatusBadRequest)
	if !ok {
		return
	}
	var params dto.StockCheckParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	availability, err := h.productService.CheckStock(c.Request.Context(), productID, params.RequiredQuantity)
	if err != nil {
		respondError(c, statusForError(err), err, "Error checking stock")
		return
	}
	if !availability.Available {
		c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Message: availability.Reason, Data: false, Errors: []string{}})
		return
	}
	c.JSON(http.StatusOK, dto.OK(availability.Reason, true))
}
