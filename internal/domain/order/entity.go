// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/domain/user"
)

// OrderStatus represents the fulfilment stage of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents payment bookkeeping, independent of fulfilment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// PaymentMethod represents how the order is paid
type PaymentMethod string

// PaymentMethodCOD is cash on delivery, the only method offered
const PaymentMethodCOD PaymentMethod = "cod"

// Order represents a placed order with its shipping details
type Order struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index" json:"user_id"` // Nullable for guest orders

	// Shipping Information
	CustomerName string `gorm:"not null;size:200" json:"customer_name"`
	Phone        string `gorm:"not null;size:15;index" json:"phone"`
	AddressLine1 string `gorm:"not null;size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2,omitempty"`
	City         string `gorm:"not null;size:100" json:"city"`
	Pincode      string `gorm:"not null;size:10" json:"pincode"`

	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status        OrderStatus     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null;default:'cod'" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null;default:'pending'" json:"payment_status"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User          *user.User           `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is an immutable line of an order. Price, title and label are
// snapshots taken at checkout so later catalog edits do not rewrite history.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	VariantID    uint            `gorm:"not null;index" json:"variant_id"`
	ProductTitle string          `gorm:"not null;size:255" json:"product_title"`
	VariantLabel string          `gorm:"size:255" json:"variant_label"`
	Quantity     int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt    time.Time       `json:"created_at"`

	// Relationships
	Variant *product.ProductVariant `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

// OrderStatusHistory records every lifecycle transition
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus   OrderStatus `gorm:"size:20;not null" json:"to_status"`
	Note       string      `gorm:"type:text" json:"note,omitempty"`
	ChangedBy  *uint       `json:"changed_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// Reference returns the customer facing order reference
func (o *Order) Reference() string {
	return fmt.Sprintf("ORD-%06d", o.ID)
}

// ItemsTotal sums price × quantity over the order's items
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal())
	}
	return total
}

// TotalQuantity returns the number of units across all items
func (o *Order) TotalQuantity() int {
	n := 0
	for i := range o.Items {
		n += o.Items[i].Quantity
	}
	return n
}

// Subtotal returns price × quantity for the item
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
