package handler

import (
	inventoryapp "github.com/pharmapos/backend/internal/application/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler handles stock ledger API endpoints
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{
		ledgerService: ledgerService,
	}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.GET("/products/:id/availability", h.Availability)
		inv.GET("/products/:id/batches", h.ListBatches)
		inv.GET("/products/:id/batches/available", h.AvailableBatches)
		inv.POST("/purchases", h.Purchase)
		inv.POST("/corrections", h.Correct)
		inv.GET("/expiry-alerts", h.ExpiryAlerts)
		inv.GET("/low-stock", h.LowStock)
	}
}

// Availability godoc
// @Summary      Get sellable quantity for a product
// @Description  Sums quantities across non-expired batches with stock remaining
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.AvailabilityResponse}
// @Router       /inventory/products/{id}/availability [get]
func (h *InventoryHandler) Availability(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	availability, err := h.ledgerService.AvailableQuantity(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, availability)
}

// AvailableBatches godoc
// @Summary      List sellable batches for a product in FEFO order
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]inventory.BatchResponse}
// @Router       /inventory/products/{id}/batches/available [get]
func (h *InventoryHandler) AvailableBatches(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	batches, err := h.ledgerService.AvailableBatches(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batches)
}

// ListBatches godoc
// @Summary      List all batches for a product, including expired and drained
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]inventory.BatchResponse}
// @Router       /inventory/products/{id}/batches [get]
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	batches, err := h.ledgerService.ListBatches(c.Request.Context(), productID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batches)
}

// Purchase godoc
// @Summary      Record a stock purchase, creating a new batch
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventory.StockPurchaseRequest true "Purchase request"
// @Success      201 {object} dto.Response{data=inventory.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/purchases [post]
func (h *InventoryHandler) Purchase(c *gin.Context) {
	var req inventoryapp.StockPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	batch, err := h.ledgerService.PurchaseStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// Correct godoc
// @Summary      Apply a manual stock correction to a batch
// @Description  Positive deltas restock, negative deltas deduct. A deduction
// @Description  larger than the remaining quantity is rejected.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventory.StockCorrectionRequest true "Correction request"
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/corrections [post]
func (h *InventoryHandler) Correct(c *gin.Context) {
	var req inventoryapp.StockCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledgerService.CorrectStock(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ExpiryAlerts godoc
// @Summary      List batches expiring within the horizon and already expired
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=inventory.ExpiryAlertResponse}
// @Router       /inventory/expiry-alerts [get]
func (h *InventoryHandler) ExpiryAlerts(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	alerts, err := h.ledgerService.ExpiryAlerts(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}

// LowStock godoc
// @Summary      List products whose availability fell below their minimum
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventory.LowStockResponse}
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	products, err := h.ledgerService.LowStockProducts(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}
