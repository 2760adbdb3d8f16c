// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/domain/checkout"
	"github.com/your-org/saree-store/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// GetCheckout handles GET /checkout: the cart with any stock problems
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	preview, err := h.checkoutService.Preview(c.Request.Context(), middleware.ShopperFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout preview",
		"data":    preview,
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var info checkout.ShippingInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		respondBindError(c, err)
		return
	}

	placed, err := h.checkoutService.Checkout(c.Request.Context(), middleware.ShopperFromContext(c), info)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data": gin.H{
			"order_id":        placed.ID,
			"order_reference": placed.Reference(),
			"total":           placed.Total.StringFixed(2),
			"status":          placed.Status,
			"payment_method":  placed.PaymentMethod,
		},
	})
}
