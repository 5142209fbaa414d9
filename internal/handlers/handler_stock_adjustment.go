package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/dto"
)

// stockAdjustmentHandler exposes the pending stock adjustment table for operators.
type stockAdjustmentHandler struct {
	reconciler portssvc.StockReconcilerSvc
}

func registerStockAdjustmentRoutes(rg *gin.RouterGroup, reconciler portssvc.StockReconcilerSvc) {
	h := &stockAdjustmentHandler{reconciler: reconciler}

	adjustments := rg.Group("/stock-adjustments")
	{
		adjustments.GET("", h.listAdjustments)
		adjustments.POST("/reconcile", h.reconcile)
	}
}

// listAdjustments godoc
// @Summary List stock adjustments
// @Description Pages through the remote stock changes recorded by the transaction service, newest first
// @Tags stock-adjustments
// @Produce  json
// @Param   status query string false "pending, applied or abandoned"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.APIResponse{data=dto.ListStockAdjustmentsResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 500 {object} dto.APIResponse "Error retrieving stock adjustments"
// @Router /stock-adjustments [get]
func (h *stockAdjustmentHandler) listAdjustments(c *gin.Context) {
	var params dto.ListStockAdjustmentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	adjs, next, err := h.reconciler.ListAdjustments(c.Request.Context(), domain.AdjustmentStatus(params.Status), params.Limit, params.NextToken)
	if err != nil {
		respondError(c, statusForError(err), err, "Error retrieving stock adjustments")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Stock adjustments retrieved successfully", dto.ToListStockAdjustmentsResponse(adjs, next)))
}

// reconcile godoc
// @Summary Run a reconciliation pass now
// @Tags stock-adjustments
// @Produce  json
// @Success 200 {object} dto.APIResponse{data=dto.ReconcileReportResponse}
// @Failure 500 {object} dto.APIResponse "Reconciliation failed"
// @Router /stock-adjustments/reconcile [post]
func (h *stockAdjustmentHandler) reconcile(c *gin.Context) {
	report, err := h.reconciler.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err, "Reconciliation failed")
		return
	}
	c.JSON(http.StatusOK, dto.OK("Reconciliation pass finished", dto.ReconcileReportResponse{
		Examined:  report.Examined,
		Applied:   report.Applied,
		Failed:    report.Failed,
		Abandoned: report.Abandoned,
	}))
}
