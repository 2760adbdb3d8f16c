// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementReason represents why a variant's stock changed
type MovementReason string

const (
	ReasonCheckout      MovementReason = "checkout"       // Sold through checkout
	ReasonCancelRestock MovementReason = "cancel_restock" // Returned to the shelf by cancellation
	ReasonImport        MovementReason = "import"         // Set by a catalog import
)

// StockMovement is an append-only audit row for every stock change.
// Delta is negative for units leaving the shelf.
type StockMovement struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	VariantID   uint           `gorm:"not null;index" json:"variant_id"`
	OrderID     *uint          `gorm:"index" json:"order_id,omitempty"`
	Delta       int            `gorm:"not null" json:"delta"`
	StockBefore int            `gorm:"not null" json:"stock_before"`
	StockAfter  int            `gorm:"not null" json:"stock_after"`
	Reason      MovementReason `gorm:"size:20;not null;index" json:"reason"`
	CreatedBy   *uint          `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (StockMovement) TableName() string { return "stock_movements" }
