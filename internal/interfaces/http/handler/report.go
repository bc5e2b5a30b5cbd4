package handler

import (
	"time"

	reportapp "github.com/pharmapos/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles profitability report API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/profit", h.ProfitSummary)
		reports.GET("/profit/daily", h.DailySummary)
	}
}

// ProfitSummaryRequest carries the report period
type ProfitSummaryRequest struct {
	From         time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To           time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
	IncludeItems bool      `form:"include_items"`
}

// ProfitSummary godoc
// @Summary      Profit summary over a period
// @Description  Revenue uses recorded sale prices; cost attributes each line
// @Description  to the batches it was deducted from.
// @Tags         reports
// @Produce      json
// @Param        from query string true "Period start (YYYY-MM-DD)"
// @Param        to query string true "Period end (YYYY-MM-DD)"
// @Param        include_items query bool false "Include per-line detail"
// @Success      200 {object} dto.Response{data=report.ProfitSummaryResponse}
// @Router       /reports/profit [get]
func (h *ReportHandler) ProfitSummary(c *gin.Context) {
	var req ProfitSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.To.Before(req.From) {
		h.BadRequest(c, "Period end must not precede period start")
		return
	}

	// The period is inclusive of the end date
	to := req.To.AddDate(0, 0, 1).Add(-time.Nanosecond)

	summary, err := h.reportService.ProfitSummary(c.Request.Context(), req.From, to, req.IncludeItems)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// DailySummary godoc
// @Summary      Profit summary for the current day
// @Tags         reports
// @Produce      json
// @Param        include_items query bool false "Include per-line detail"
// @Success      200 {object} dto.Response{data=report.ProfitSummaryResponse}
// @Router       /reports/profit/daily [get]
func (h *ReportHandler) DailySummary(c *gin.Context) {
	includeItems := c.Query("include_items") == "true"

	summary, err := h.reportService.DailySummary(c.Request.Context(), includeItems)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
