// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/domain/order"
	"github.com/your-org/saree-store/internal/interfaces/http/middleware"
	"github.com/your-org/saree-store/internal/pkg/pdf"
)

// InvoiceHandler serves order documents. Customers get a receipt for their
// own orders, operators an invoice for any order.
type InvoiceHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, pdfService *pdf.Service) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		pdfService:   pdfService,
	}
}

// GetReceipt handles GET /orders/:id/receipt
func (h *InvoiceHandler) GetReceipt(c *gin.Context) {
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
	h.render(c, o, pdf.Receipt)
}

// GetInvoice handles GET /admin/orders/:id/invoice
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.render(c, o, pdf.Invoice)
}

// render writes the document as PDF, or as HTML when ?format=html
func (h *InvoiceHandler) render(c *gin.Context, o *order.Order, kind pdf.DocumentKind) {
	if c.Query("format") == "html" {
		html, err := h.pdfService.RenderHTML(o, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	body, err := h.pdfService.Generate(o, kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.pdf", kind, o.Reference()))
	c.Header("Content-Length", strconv.Itoa(len(body)))
	c.Data(http.StatusOK, "application/pdf", body)
}
