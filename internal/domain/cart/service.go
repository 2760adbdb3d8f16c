// internal/domain/cart/service.go
package cart

import (
	"context"
	"math"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/pkg/apperror"
)

// Adjust actions
const (
	ActionIncrement = "increment"
	ActionDecrement = "decrement"
)

// VariantReader looks up a variant with its product by id
type VariantReader interface {
	GetVariant(ctx context.Context, id uint) (*product.ProductVariant, error)
}

// Service applies cart rules on top of a SessionStore. Stock checks here are
// advisory; checkout re-validates against the locked rows.
type Service struct {
	variants VariantReader
	store    SessionStore
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(variants VariantReader, store SessionStore, logger *logrus.Logger) *Service {
	return &Service{
		variants: variants,
		store:    store,
		logger:   logger,
	}
}

// ParseVariantID converts a cart key to a catalog id
func ParseVariantID(variantID string) (uint, error) {
	id, err := strconv.ParseUint(variantID, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("variant %q: %w", variantID, apperror.ErrNotFound)
	}
	return uint(id), nil
}

// Load returns the shopper's raw cart
func (s *Service) Load(ctx context.Context, shopper Shopper) (*Cart, error) {
	if shopper.SessionID == "" {
		return nil, apperror.NewValidationError("session", "a shopper session is required")
	}
	return s.store.Load(ctx, shopper.SessionID)
}

// Add increases the quantity of a variant by delta, creating the line if
// needed. The resulting quantity may never exceed the variant's current stock.
func (s *Service) Add(ctx context.Context, shopper Shopper, variantID string, delta int) (line *SnapshotLine, err error) {
	defer func() { cartMutationsTotal.WithLabelValues("add", apperror.Code(err)).Inc() }()

	if delta < 1 {
		return nil, apperror.NewValidationError("quantity", "must be at least 1")
	}

	c, err := s.Load(ctx, shopper)
	if err != nil {
		return nil, err
	}

	variant, err := s.lookup(ctx, variantID)
	if err != nil {
		return nil, err
	}

	current := c.Quantity(variantID)
	requested := current + delta
	if requested < current {
		requested = math.MaxInt
	}

	quantity, err := checkStock(variant, requested)
	if err != nil {
		return nil, err
	}

	c.Set(variantID, quantity)
	if err := s.store.Save(ctx, shopper.SessionID, c); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": shopper.SessionID,
		"variant_id": variantID,
		"quantity":   quantity,
	}).Debug("Cart line added")

	result := newSnapshotLine(variantID, variant, quantity)
	return &result, nil
}

// Remove deletes a line. Removing an absent line is not an error.
func (s *Service) Remove(ctx context.Context, shopper Shopper, variantID string) (snap *Snapshot, err error) {
	defer func() { cartMutationsTotal.WithLabelValues("remove", apperror.Code(err)).Inc() }()

	c, err := s.Load(ctx, shopper)
	if err != nil {
		return nil, err
	}

	if c.Remove(variantID) {
		if err := s.store.Save(ctx, shopper.SessionID, c); err != nil {
			return nil, err
		}
	}

	return s.snapshot(ctx, shopper, c)
}

// Adjust increments or decrements a line by one. Increment obeys the same
// stock rule as Add; decrement removes the line once it reaches zero.
// Adjusting a variant that is not in the cart changes nothing.
func (s *Service) Adjust(ctx context.Context, shopper Shopper, variantID, action string) (snap *Snapshot, err error) {
	defer func() { cartMutationsTotal.WithLabelValues("adjust", apperror.Code(err)).Inc() }()

	if action != ActionIncrement && action != ActionDecrement {
		return nil, apperror.NewValidationError("action", "must be increment or decrement")
	}

	c, err := s.Load(ctx, shopper)
	if err != nil {
		return nil, err
	}

	current := c.Quantity(variantID)
	if current == 0 {
		return s.snapshot(ctx, shopper, c)
	}

	switch action {
	case ActionIncrement:
		variant, err := s.lookup(ctx, variantID)
		if err != nil {
			return nil, err
		}
		quantity, err := checkStock(variant, current+1)
		if err != nil {
			return nil, err
		}
		c.Set(variantID, quantity)
	case ActionDecrement:
		c.Set(variantID, current-1)
	}

	if err := s.store.Save(ctx, shopper.SessionID, c); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, shopper, c)
}

// Clear empties the shopper's cart
func (s *Service) Clear(ctx context.Context, shopper Shopper) (err error) {
	defer func() { cartMutationsTotal.WithLabelValues("clear", apperror.Code(err)).Inc() }()

	if shopper.SessionID == "" {
		return apperror.NewValidationError("session", "a shopper session is required")
	}
	return s.store.Delete(ctx, shopper.SessionID)
}

// Snapshot prices the cart against the current catalog. Lines whose variant
// no longer exists are dropped from the session and reported in Removed.
func (s *Service) Snapshot(ctx context.Context, shopper Shopper) (*Snapshot, error) {
	c, err := s.Load(ctx, shopper)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, shopper, c)
}

func (s *Service) snapshot(ctx context.Context, shopper Shopper, c *Cart) (*Snapshot, error) {
	snap := &Snapshot{
		Lines: make([]SnapshotLine, 0, c.Len()),
		Total: decimal.Zero,
	}

	for _, l := range c.Lines() {
		variant, err := s.lookup(ctx, l.VariantID)
		if errors.Is(err, apperror.ErrNotFound) {
			snap.Removed = append(snap.Removed, l.VariantID)
			continue
		}
		if err != nil {
			return nil, err
		}

		line := newSnapshotLine(l.VariantID, variant, l.Quantity)
		snap.Lines = append(snap.Lines, line)
		snap.Total = snap.Total.Add(line.Subtotal)
		snap.TotalQuantity += l.Quantity
	}
	snap.ItemCount = len(snap.Lines)

	if len(snap.Removed) > 0 {
		for _, id := range snap.Removed {
			c.Remove(id)
		}
		if err := s.store.Save(ctx, shopper.SessionID, c); err != nil {
			return nil, err
		}
		cartStaleLinesTotal.Add(float64(len(snap.Removed)))
		s.logger.WithFields(logrus.Fields{
			"session_id": shopper.SessionID,
			"removed":    snap.Removed,
		}).Info("Dropped stale cart lines")
	}

	return snap, nil
}

func (s *Service) lookup(ctx context.Context, variantID string) (*product.ProductVariant, error) {
	id, err := ParseVariantID(variantID)
	if err != nil {
		return nil, err
	}
	return s.variants.GetVariant(ctx, id)
}

// checkStock returns quantity when the variant can cover it
func checkStock(v *product.ProductVariant, quantity int) (int, error) {
	if v.Stock <= 0 {
		return 0, &apperror.StockError{
			Kind:      apperror.OutOfStock,
			VariantID: v.ID,
			Product:   v.DisplayName(),
			Requested: quantity,
		}
	}
	if quantity > v.Stock {
		return 0, &apperror.StockError{
			Kind:      apperror.InsufficientStock,
			VariantID: v.ID,
			Product:   v.DisplayName(),
			Available: v.Stock,
			Requested: quantity,
		}
	}
	return quantity, nil
}
