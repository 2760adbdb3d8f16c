// internal/domain/product/entity.go
package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BlouseOption says whether a saree variant ships with a blouse piece
type BlouseOption string

const (
	WithBlouse    BlouseOption = "with_blouse"
	WithoutBlouse BlouseOption = "without_blouse"
)

// Valid reports whether o is one of the known options
func (o BlouseOption) Valid() bool {
	return o == WithBlouse || o == WithoutBlouse
}

// Label returns the human readable form used on receipts and variant names
func (o BlouseOption) Label() string {
	switch o {
	case WithBlouse:
		return "With Blouse"
	case WithoutBlouse:
		return "Without Blouse"
	default:
		return string(o)
	}
}

// Category groups products for browsing
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null;size:120" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Product represents a saree listing. Prices and stock live on its variants.
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Title         string          `gorm:"not null;size:255" json:"title"`
	Slug          string          `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description   string          `gorm:"type:text" json:"description"`
	CategoryID    *uint           `gorm:"index" json:"category_id"`
	FeaturedImage string          `gorm:"size:500" json:"featured_image,omitempty"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	Active        bool            `gorm:"default:true;index" json:"active"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Category *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// ProductVariant is the purchasable unit: a product in a given colour and
// blouse option, with its own price and stock.
type ProductVariant struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	SKU          string          `gorm:"size:100" json:"sku,omitempty"`
	Color        string          `gorm:"size:50" json:"color,omitempty"`
	BlouseOption BlouseOption    `gorm:"size:20;not null;default:'without_blouse'" json:"blouse_option"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock        int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides
func (Category) TableName() string       { return "categories" }
func (Product) TableName() string        { return "products" }
func (ProductVariant) TableName() string { return "product_variants" }

// DisplayName renders "<title> - <color> - <blouse option>", skipping the
// colour when it is not set. The product must be loaded for the title.
func (v *ProductVariant) DisplayName() string {
	parts := make([]string, 0, 3)
	if v.Product != nil {
		parts = append(parts, v.Product.Title)
	} else {
		parts = append(parts, fmt.Sprintf("Variant %d", v.ID))
	}
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	parts = append(parts, v.BlouseOption.Label())
	return strings.Join(parts, " - ")
}

// InStock reports whether at least one unit is available
func (v *ProductVariant) InStock() bool {
	return v.Stock > 0
}

// Subtotal returns price × quantity without floating point
func (v *ProductVariant) Subtotal(quantity int) decimal.Decimal {
	return v.Price.Mul(decimal.NewFromInt(int64(quantity)))
}
