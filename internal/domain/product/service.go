// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"github.com/your-org/saree-store/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles catalog reads and the few catalog writes the storefront needs
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Search   string `form:"q"`
	Category string `form:"category"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// ListProducts returns active products, newest first, optionally filtered by a
// case-insensitive search over title and description and by category slug.
func (s *Service) ListProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&Product{}).Where("products.active = ?", true)

	if req.Search != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(req.Search)) + "%"
		query = query.Where("LOWER(products.title) LIKE ? OR LOWER(products.description) LIKE ?", search, search)
	}

	if req.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", req.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	err := query.
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("price ASC, id ASC")
		}).
		Order("products.created_at DESC, products.id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// GetProductBySlug retrieves an active product with its category and variants
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("price ASC, id ASC")
		}).
		Where("slug = ? AND active = ?", slug, true).
		First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q: %w", slug, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// GetVariant retrieves a variant with its product loaded. The returned price
// and stock are the current values, which the cart treats as advisory.
func (s *Service) GetVariant(ctx context.Context, id uint) (*ProductVariant, error) {
	var variant ProductVariant
	result := s.db.WithContext(ctx).Preload("Product").First(&variant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("variant %d: %w", id, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", result.Error)
	}
	return &variant, nil
}

// DeleteVariant removes a variant unless order history references it
func (s *Service) DeleteVariant(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Table("order_items").Where("variant_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check order references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("variant %d: %w", id, apperror.ErrVariantInUse)
		}

		result := tx.Delete(&ProductVariant{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete variant: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("variant %d: %w", id, apperror.ErrNotFound)
		}

		s.logger.WithField("variant_id", id).Info("Variant deleted")
		return nil
	})
}

// Slugify transliterates name to ASCII and joins its words with hyphens
func Slugify(name string) string {
	return slug.Make(name)
}
