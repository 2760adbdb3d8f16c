// internal/domain/cart/entity.go
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/your-org/saree-store/internal/domain/product"
)

// Shopper identifies who a cart operation acts for. SessionID is always set;
// UserID is set only for signed-in shoppers.
type Shopper struct {
	SessionID string
	UserID    *uint
}

// Line is one variant and its requested quantity
type Line struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is an insertion-ordered map from variant id to a positive quantity.
// The zero value is an empty cart.
type Cart struct {
	lines []Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// Quantity returns the quantity held for variantID, or 0
func (c *Cart) Quantity(variantID string) int {
	if i := c.index(variantID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Set stores quantity for variantID, appending new lines at the end.
// A non-positive quantity removes the line.
func (c *Cart) Set(variantID string, quantity int) {
	if quantity <= 0 {
		c.Remove(variantID)
		return
	}
	if i := c.index(variantID); i >= 0 {
		c.lines[i].Quantity = quantity
		return
	}
	c.lines = append(c.lines, Line{VariantID: variantID, Quantity: quantity})
}

// Remove deletes the line for variantID and reports whether it was present
func (c *Cart) Remove(variantID string) bool {
	i := c.index(variantID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct variants
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalQuantity sums the quantities of all lines
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) index(variantID string) int {
	for i, l := range c.lines {
		if l.VariantID == variantID {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes the cart as an array of lines to keep the order
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.lines)
}

// UnmarshalJSON decodes an array of lines. Duplicate ids are merged and
// non-positive quantities dropped so a hand-edited session cannot break the invariants.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.lines = nil
	for _, l := range lines {
		if l.VariantID == "" || l.Quantity <= 0 {
			continue
		}
		c.Set(l.VariantID, c.Quantity(l.VariantID)+l.Quantity)
	}
	return nil
}

// SnapshotLine is a cart line resolved against the catalog
type SnapshotLine struct {
	VariantID string                  `json:"variant_id"`
	Variant   *product.ProductVariant `json:"variant"`
	Name      string                  `json:"name"`
	Quantity  int                     `json:"quantity"`
	Subtotal  decimal.Decimal         `json:"subtotal"`
}

// Snapshot is the priced view of a cart. Removed lists variant ids that no
// longer exist and were dropped from the session.
type Snapshot struct {
	Lines         []SnapshotLine  `json:"lines"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
	Total         decimal.Decimal `json:"total"`
	Removed       []string        `json:"removed,omitempty"`
}

func newSnapshotLine(variantID string, v *product.ProductVariant, quantity int) SnapshotLine {
	return SnapshotLine{
		VariantID: variantID,
		Variant:   v,
		Name:      v.DisplayName(),
		Quantity:  quantity,
		Subtotal:  v.Subtotal(quantity),
	}
}
