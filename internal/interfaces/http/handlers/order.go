// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/domain/order"
	"github.com/your-org/saree-store/internal/interfaces/http/middleware"
)

// OrderHandler handles order tracking, customer order history and the
// operator order desk
type OrderHandler struct {
	orderService *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// TrackOrderRequest is the body of POST /orders/track
type TrackOrderRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

// UpdateStatusRequest is the body of POST /admin/orders/status
type UpdateStatusRequest struct {
	OrderIDs []uint            `json:"order_ids" binding:"required,min=1"`
	Status   order.OrderStatus `json:"status" binding:"required"`
	Note     string            `json:"note" binding:"max=500"`
}

// UpdatePaymentRequest is the body of PATCH /admin/orders/:id/payment
type UpdatePaymentRequest struct {
	PaymentStatus order.PaymentStatus `json:"payment_status" binding:"required"`
}

// CancelOrderRequest is the optional body of POST /orders/:id/cancel
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// TrackOrder handles POST /orders/track. Guests can look up an order with
// its number and the phone it was placed with.
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	var req TrackOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.Track(c.Request.Context(), req.OrderID, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order found",
		"data":    o,
	})
}

// GetUserOrders handles GET /orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userID, q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetUserOrder handles GET /orders/:id
func (h *OrderHandler) GetUserOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	o, err := h.orderService.GetUserOrder(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	o, err := h.orderService.CancelByCustomer(c.Request.Context(), userID, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"data":    o,
	})
}

// ListOrders handles GET /admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /admin/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// UpdateStatus handles POST /admin/orders/status. Orders that cannot make
// the move are listed under rejected; the response is still 200.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var actorID *uint
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		actorID = &id
	}

	result, err := h.orderService.UpdateStatus(c.Request.Context(), req.OrderIDs, req.Status, actorID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"data":    result,
	})
}

// UpdatePayment handles PATCH /admin/orders/:id/payment
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status updated",
		"data":    o,
	})
}
