package handler

import (
	tradeapp "github.com/pharmapos/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SalesReturnHandler handles return API endpoints
type SalesReturnHandler struct {
	BaseHandler
	returnService *tradeapp.ReturnService
}

// NewSalesReturnHandler creates a new SalesReturnHandler
func NewSalesReturnHandler(returnService *tradeapp.ReturnService) *SalesReturnHandler {
	return &SalesReturnHandler{
		returnService: returnService,
	}
}

// RegisterRoutes registers return routes
func (h *SalesReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("/:id/returns", h.ProcessReturn)
		sales.GET("/:id/returns", h.ListBySale)
	}
}

// ProcessReturn godoc
// @Summary      Process a return against a prior sale
// @Description  Checks the return window and the remaining returnable
// @Description  quantity per line, refunds at the recorded sale price, and
// @Description  restocks batches according to the configured policy.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID header string true "Operator ID"
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body trade.ProcessReturnRequest true "Return request"
// @Success      201 {object} dto.Response{data=trade.ReturnResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/{id}/returns [post]
func (h *SalesReturnHandler) ProcessReturn(c *gin.Context) {
	operatorID, err := getOperatorID(c)
	if err != nil {
		h.BadRequest(c, "Missing X-Operator-ID header")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req tradeapp.ProcessReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.OperatorID = operatorID

	ret, err := h.returnService.ProcessReturn(c.Request.Context(), saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ret)
}

// ListBySale godoc
// @Summary      List returns recorded against a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]trade.ReturnResponse}
// @Router       /sales/{id}/returns [get]
func (h *SalesReturnHandler) ListBySale(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	returns, err := h.returnService.ListBySale(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, returns)
}
