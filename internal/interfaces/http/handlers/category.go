// internal/interfaces/http/handlers/category.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/domain/product"
)

const (
	categoriesCacheKey = "catalog:categories"
	categoriesCacheTTL = 10 * time.Minute
)

// Cache stores JSON values with an expiry
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// invalidateCatalog drops cached catalog listings. Failures only leave the
// cache stale until its TTL.
func invalidateCatalog(ctx context.Context, cache Cache) {
	if cache != nil {
		_ = cache.Del(ctx, categoriesCacheKey)
	}
}

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	categoryService *product.CategoryService
	cache           Cache
}

// NewCategoryHandler creates a new category handler. cache may be nil.
func NewCategoryHandler(categoryService *product.CategoryService, cache Cache) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		cache:           cache,
	}
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	ctx := c.Request.Context()

	var categories []product.Category
	if h.cache != nil {
		if found, err := h.cache.GetJSON(ctx, categoriesCacheKey, &categories); err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"message": "Categories retrieved successfully",
				"data":    categories,
			})
			return
		}
	}

	categories, err := h.categoryService.GetCategories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(ctx, categoriesCacheKey, categories, categoriesCacheTTL)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    categories,
	})
}

// GetCategoryBySlug handles GET /categories/:slug
func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	category, err := h.categoryService.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category retrieved successfully",
		"data":    category,
	})
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	invalidateCatalog(c.Request.Context(), h.cache)

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
