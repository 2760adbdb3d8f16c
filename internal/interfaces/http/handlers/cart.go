// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/domain/cart"
	"github.com/your-org/saree-store/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints. The cart belongs to the session cookie
// set by middleware.Session.
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// AddToCartRequest is the body of POST /cart/items
type AddToCartRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=100"`
}

// AdjustCartItemRequest is the body of PATCH /cart/items/:variant_id
type AdjustCartItemRequest struct {
	Action string `json:"action" binding:"required,oneof=increment decrement"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	snap, err := h.cartService.Snapshot(c.Request.Context(), middleware.ShopperFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    snap,
	})
}

// AddToCart handles POST /cart/items. Quantity defaults to 1.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.cartService.Add(c.Request.Context(), middleware.ShopperFromContext(c), req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    line,
	})
}

// AdjustCartItem handles PATCH /cart/items/:variant_id
func (h *CartHandler) AdjustCartItem(c *gin.Context) {
	var req AdjustCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	snap, err := h.cartService.Adjust(c.Request.Context(), middleware.ShopperFromContext(c), c.Param("variant_id"), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    snap,
	})
}

// RemoveFromCart handles DELETE /cart/items/:variant_id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	snap, err := h.cartService.Remove(c.Request.Context(), middleware.ShopperFromContext(c), c.Param("variant_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    snap,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), middleware.ShopperFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}
