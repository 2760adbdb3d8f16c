// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/domain/inventory"
)

// InventoryHandler exposes the stock movement ledger to operators
type InventoryHandler struct {
	inventoryService *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// GetVariantMovements handles GET /admin/variants/:id/movements
func (h *InventoryHandler) GetVariantMovements(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	movements, err := h.inventoryService.ListMovements(c.Request.Context(), id, q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock movements retrieved successfully",
		"data":    movements,
	})
}
