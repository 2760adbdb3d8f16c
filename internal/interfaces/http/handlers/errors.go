// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/saree-store/internal/pkg/apperror"
)

// respondError writes the JSON error response for err. Unclassified errors
// are reported as 500 without their message and attached to the context so
// the request logger records them.
func respondError(c *gin.Context, err error) {
	var (
		verr  *apperror.ValidationError
		serr  *apperror.StockError
		stale *apperror.StaleCartItemError
		terr  *apperror.TransitionError
	)
	code := apperror.Code(err)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"code":    code,
			"details": verr.Fields,
		})
	case errors.As(err, &serr):
		c.JSON(http.StatusConflict, gin.H{
			"error": serr.Error(),
			"code":  code,
			"details": gin.H{
				"variant_id": strconv.FormatUint(uint64(serr.VariantID), 10),
				"product":    serr.Product,
				"available":  serr.Available,
				"requested":  serr.Requested,
			},
		})
	case errors.As(err, &stale):
		c.JSON(http.StatusConflict, gin.H{
			"error":   stale.Error(),
			"code":    code,
			"details": gin.H{"variant_id": stale.VariantID},
		})
	case errors.As(err, &terr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": terr.Error(),
			"code":  code,
			"details": gin.H{
				"order_id": terr.OrderID,
				"from":     terr.From,
				"to":       terr.To,
			},
		})
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "code": code})
	case errors.Is(err, apperror.ErrVariantInUse):
		c.JSON(http.StatusConflict, gin.H{"error": apperror.ErrVariantInUse.Error(), "code": code})
	case errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": code})
	case errors.Is(err, apperror.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": code})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": code})
	}
}

// respondBindError reports a malformed request body or query
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"code":    "validation_error",
		"details": err.Error(),
	})
}

// parseIDParam reads a positive numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  "validation_error",
		})
		return 0, false
	}
	return uint(id), true
}

// pageQuery binds the page and limit query parameters of list endpoints
type pageQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}
