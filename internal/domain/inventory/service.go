// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"

	"github.com/your-org/saree-store/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service exposes the stock movement ledger
type Service struct {
	db *gorm.DB
}

// NewService creates a new inventory service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Movement describes one stock change to record
type Movement struct {
	VariantID   uint
	OrderID     *uint
	StockBefore int
	StockAfter  int
	Reason      MovementReason
	CreatedBy   *uint
}

// Record appends movements using tx, so the audit commits or rolls back with
// the stock change it describes. Movements with no net change are skipped.
func Record(tx *gorm.DB, movements ...Movement) error {
	rows := make([]StockMovement, 0, len(movements))
	for _, m := range movements {
		if m.StockBefore == m.StockAfter {
			continue
		}
		rows = append(rows, StockMovement{
			VariantID:   m.VariantID,
			OrderID:     m.OrderID,
			Delta:       m.StockAfter - m.StockBefore,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			CreatedBy:   m.CreatedBy,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to record stock movements: %w", err)
	}
	return nil
}

// MovementListResponse represents a page of movements
type MovementListResponse struct {
	Movements  []StockMovement       `json:"movements"`
	Pagination pagination.Pagination `json:"pagination"`
}

// ListMovements returns the ledger for a variant, newest first
func (s *Service) ListMovements(ctx context.Context, variantID uint, page, limit int) (*MovementListResponse, error) {
	page, limit = pagination.Normalize(page, limit)

	query := s.db.WithContext(ctx).Model(&StockMovement{}).Where("variant_id = ?", variantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count stock movements: %w", err)
	}

	var movements []StockMovement
	err := query.Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock movements: %w", err)
	}

	return &MovementListResponse{
		Movements:  movements,
		Pagination: pagination.New(page, limit, total),
	}, nil
}
