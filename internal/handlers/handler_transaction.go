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

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.listTransactions)
		transactions.POST("", h.createTransaction)
		transactions.GET("/:id", h.getTransaction)
		transactions.PUT("/:id", h.updateTransaction)
		transactions.DELETE("/:id", h.deleteTransaction)
		transactions.GET("/product/:productId/history", h.getProductHistory)
	}
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists transactions matching the filters, one page at a time, each with its product snapshot
// @Tags transactions
// @Produce  json
// @Param   productId query string false "Product ID"
// @Param   transactionType query string false "Purchase or Sale"
// @Param   startDate query string false "Earliest transaction date (YYYY-MM-DD or RFC3339)"
// @Param   endDate query string false "Latest transaction date (YYYY-MM-DD or RFC3339)"
// @Param   minAmount query string false "Minimum total price"
// @Param   maxAmount query string false "Maximum total price"
// @Param   page query int false "Page number" default(1)
// @Param   pageSize query int false "Page size" default(10)
// @Param   sortBy query string false "transactionDate, transactionType, quantity or totalPrice" default(transactionDate)
// @Param   sortDescending query bool false "Sort newest first" default(true)
// @Success 200 {object} dto.APIResponse{data=dto.PagedResult[dto.TransactionResponse]}
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 500 {object} dto.APIResponse "Error retrieving transactions"
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, http.StatusBadRequest, apperrors.Validation(err.Error()), apperrors.MsgValidationFailed)
		return
	}

	views, total, err := h.transactionService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, statusForError(err), err, "Error retrieving transactions")
		return
	}

	page := pagination.NewPage(filter.Page, filter.PageSize)
	c.JSON(http.StatusOK, dto.OK("Transactions retrieved successfully",
		dto.NewPagedResult(dto.ToTransactionResponses(views), total, page)))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.APIResponse{data=dto.TransactionResponse}
// @Failure 404 {object} dto.APIResponse "Transaction not found"
// @Failure 500 {object} dto.APIResponse "Error retrieving transaction"
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	transactionID, ok := transactionPathID(c)
	if !ok {
		return
	}
	view, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, statusForError(err), err, "Error retrieving transaction")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Transaction retrieved successfully", dto.ToTransactionResponse(*view)))
}

// createTransaction godoc
// @Summary Record a purchase or sale
// @Description Persists the transaction and moves the product stock in the product service.
// @Description A sale is refused when the stock on hand is lower than the quantity.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.APIResponse{data=dto.TransactionResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed, product not found, insufficient stock or stock update failed"
// @Failure 500 {object} dto.APIResponse "Failed to persist transaction"
// @Failure 502 {object} dto.APIResponse "Error communicating with ProductService"
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	logger.Info("Received request to create transaction",
		slog.String("product_id", req.ProductID),
		slog.String("transaction_type", req.TransactionType),
		slog.Int("quantity", req.Quantity))

	view, err := h.transactionService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, statusForError(err), err, "Error creating transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.OK("Transaction created successfully", dto.ToTransactionResponse(*view)))
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Replaces the stock effect of the transaction with the new type and quantity. The product cannot change.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "New transaction details"
// @Success 200 {object} dto.APIResponse{data=dto.TransactionResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed, insufficient stock or stock update failed"
// @Failure 404 {object} dto.APIResponse "Transaction not found"
// @Failure 500 {object} dto.APIResponse "Failed to persist transaction"
// @Failure 502 {object} dto.APIResponse "Error communicating with ProductService"
// @Router /transactions/{id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID, ok := transactionPathID(c)
	if !ok {
		return
	}
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	logger.Info("Received request to update transaction", slog.String("transaction_id", transactionID))

	view, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req)
	if err != nil {
		respondError(c, statusForError(err), err, "Error updating transaction")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Transaction updated successfully", dto.ToTransactionResponse(*view)))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Removes the transaction and reverses its stock effect
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.APIResponse{data=bool}
// @Failure 404 {object} dto.APIResponse "Transaction not found"
// @Failure 500 {object} dto.APIResponse "Failed to persist transaction"
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	transactionID, ok := transactionPathID(c)
	if !ok {
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received request to delete transaction", slog.String("transaction_id", transactionID))

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID); err != nil {
		respondError(c, statusForError(err), err, "Error deleting transaction")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Transaction deleted successfully", true))
}

// getProductHistory godoc
// @Summary Transaction history of a product
// @Tags transactions
// @Produce  json
// @Param   productId path string true "Product ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.TransactionResponse}
// @Failure 400 {object} dto.APIResponse "Product not found"
// @Failure 500 {object} dto.APIResponse "Error retrieving product history"
// @Router /transactions/product/{productId}/history [get]
func (h *transactionHandler) getProductHistory(c *gin.Context) {
	productID, ok := pathID(c, "productId", apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound), http.StatusBadRequest)
	if !ok {
		return
	}
	views, err := h.transactionService.GetProductHistory(c.Request.Context(), productID)
	if err != nil {
		respondError(c, statusForError(err), err, "Error retrieving product history")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Product history retrieved successfully", dto.ToTransactionResponses(views)))
}

func transactionPathID(c *gin.Context) (string, bool) {
	return pathID(c, "id", apperrors.New(apperrors.KindTransactionNotFound, apperrors.MsgTransactionNotFound), http.StatusNotFound)
}
