package handler

import (
	tradeapp "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleHandler handles point-of-sale API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// RegisterRoutes registers sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Checkout)
		sales.GET("", h.List)
		sales.GET("/:id", h.GetByID)
		sales.GET("/receipt/:code", h.GetByReceiptCode)
	}
}

// SaleListRequest carries sale list query parameters
type SaleListRequest struct {
	dto.ListRequest
	OperatorID    string `form:"operator_id"`
	PaymentMethod string `form:"payment_method"`
}

// Checkout godoc
// @Summary      Finalize a sale
// @Description  Commits the whole cart atomically: every line's batch
// @Description  deductions and the sale record succeed or fail together.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID header string true "Operator ID"
// @Param        request body trade.FinalizeSaleRequest true "Cart to commit"
// @Success      201 {object} dto.Response{data=trade.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales [post]
func (h *SaleHandler) Checkout(c *gin.Context) {
	operatorID, err := getOperatorID(c)
	if err != nil {
		h.BadRequest(c, "Missing X-Operator-ID header")
		return
	}

	var req tradeapp.FinalizeSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.OperatorID = operatorID

	sale, err := h.saleService.FinalizeSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get sale by ID
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetByReceiptCode godoc
// @Summary      Get sale by receipt code
// @Tags         sales
// @Produce      json
// @Param        code path string true "Receipt code" example(RCP-000001)
// @Success      200 {object} dto.Response{data=trade.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/receipt/{code} [get]
func (h *SaleHandler) GetByReceiptCode(c *gin.Context) {
	sale, err := h.saleService.GetByReceiptCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        operator_id query string false "Filter by operator"
// @Param        payment_method query string false "Filter by payment method"
// @Success      200 {object} dto.Response{data=[]trade.SaleResponse}
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var req SaleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filters := make(map[string]interface{})
	if req.OperatorID != "" {
		filters["operator_id"] = req.OperatorID
	}
	if req.PaymentMethod != "" {
		filters["payment_method"] = req.PaymentMethod
	}

	sales, total, err := h.saleService.List(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  filters,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, sales, total, req.Page, req.PageSize)
}
