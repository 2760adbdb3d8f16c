// internal/interfaces/http/handlers/product.go
package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/interfaces/http/middleware"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService *product.Service
	importService  *product.ImportService
	cache          Cache
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, importService *product.ImportService, cache Cache) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		importService:  importService,
		cache:          cache,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.productService.ListProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}

// GetProductBySlug handles GET /products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.productService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// DeleteVariant handles DELETE /admin/variants/:id
func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteVariant(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant deleted successfully",
	})
}

// ImportCatalog handles POST /admin/catalog/import. The sheet is uploaded as
// multipart field "file" and may be CSV or XLSX.
func (h *ProductHandler) ImportCatalog(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBindError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	var (
		rows      []product.ImportRow
		rowErrors []product.RowError
	)
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		rows, rowErrors, err = product.ParseCSV(file)
	case ".xlsx":
		var data []byte
		data, err = io.ReadAll(file)
		if err == nil {
			rows, rowErrors, err = product.ParseXLSX(bytes.NewReader(data), int64(len(data)))
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported file type, upload a .csv or .xlsx sheet",
			"code":  "validation_error",
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	var actorID *uint
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		actorID = &userID
	}

	result, err := h.importService.Import(c.Request.Context(), rows, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	result.Errors = append(rowErrors, result.Errors...)
	invalidateCatalog(c.Request.Context(), h.cache)

	c.JSON(http.StatusOK, gin.H{
		"message": "Catalog imported",
		"data":    result,
	})
}
