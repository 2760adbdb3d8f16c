// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, logger *logrus.Logger) *CategoryService {
	return &CategoryService{
		db:     db,
		logger: logger,
	}
}

// GetCategories lists all categories by name
func (s *CategoryService) GetCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// GetCategoryBySlug retrieves a category with its active products, newest first
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	result := s.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("created_at DESC, id DESC")
		}).
		Preload("Products.Variants").
		Where("slug = ?", slug).
		First(&category)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %q: %w", slug, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", result.Error)
	}

	return &category, nil
}

// GetOrCreateCategory finds a category by the slug of name or creates it
func (s *CategoryService) GetOrCreateCategory(ctx context.Context, name string) (*Category, error) {
	return getOrCreateCategory(s.db.WithContext(ctx), name)
}

func getOrCreateCategory(db *gorm.DB, name string) (*Category, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, apperror.NewValidationError("category", "name must contain letters or digits")
	}

	category := Category{Name: name, Slug: slug}
	if err := db.Where(Category{Slug: slug}).FirstOrCreate(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to get or create category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes a category. Its products stay and lose the reference.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		detached := tx.Model(&Product{}).Where("category_id = ?", id).Update("category_id", nil)
		if detached.Error != nil {
			return fmt.Errorf("failed to detach products: %w", detached.Error)
		}

		result := tx.Delete(&Category{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete category: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("category %d: %w", id, apperror.ErrNotFound)
		}

		s.logger.WithFields(logrus.Fields{
			"category_id":       id,
			"products_detached": detached.RowsAffected,
		}).Info("Category deleted")
		return nil
	})
}
