// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/domain/cart"
	"github.com/your-org/saree-store/internal/domain/inventory"
	"github.com/your-org/saree-store/internal/domain/order"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Carts is the part of the cart service checkout depends on
type Carts interface {
	Load(ctx context.Context, shopper cart.Shopper) (*cart.Cart, error)
	Snapshot(ctx context.Context, shopper cart.Shopper) (*cart.Snapshot, error)
	Clear(ctx context.Context, shopper cart.Shopper) error
}

// PlacedNotifier is told about orders after they commit
type PlacedNotifier interface {
	NotifyPlaced(ctx context.Context, orderID uint)
}

// Service turns a shopper's cart into an order
type Service struct {
	db       *gorm.DB
	carts    Carts
	notifier PlacedNotifier
	logger   *logrus.Logger
}

// NewService creates a new checkout service. notifier may be nil.
func NewService(db *gorm.DB, carts Carts, notifier PlacedNotifier, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		carts:    carts,
		notifier: notifier,
		logger:   logger,
	}
}

// LineIssue describes a cart line that would fail checkout right now
type LineIssue struct {
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Preview is the checkout page view: the priced cart plus lines that exceed
// current stock. It is advisory; Checkout re-validates under lock.
type Preview struct {
	Cart   *cart.Snapshot `json:"cart"`
	Issues []LineIssue    `json:"issues,omitempty"`
	Ready  bool           `json:"ready"`
}

// Preview prices the cart and flags stock problems without changing anything
func (s *Service) Preview(ctx context.Context, shopper cart.Shopper) (*Preview, error) {
	snap, err := s.carts.Snapshot(ctx, shopper)
	if err != nil {
		return nil, err
	}

	preview := &Preview{Cart: snap}
	for _, line := range snap.Lines {
		if line.Quantity > line.Variant.Stock {
			preview.Issues = append(preview.Issues, LineIssue{
				VariantID: line.VariantID,
				Name:      line.Name,
				Requested: line.Quantity,
				Available: line.Variant.Stock,
			})
		}
	}
	preview.Ready = len(snap.Lines) > 0 && len(preview.Issues) == 0
	return preview, nil
}

type checkoutLine struct {
	key      string
	id       uint
	quantity int
}

// Checkout validates the shipping details, re-checks every line against
// locked stock rows, and in one transaction creates the order with its items
// and decrements stock. On any failure nothing is written and the cart is
// left as it was. On success the cart is cleared.
func (s *Service) Checkout(ctx context.Context, shopper cart.Shopper, info ShippingInfo) (placed *order.Order, err error) {
	start := time.Now()
	defer func() {
		checkoutTotal.WithLabelValues(apperror.Code(err)).Inc()
		checkoutDuration.Observe(time.Since(start).Seconds())
	}()

	info = info.Normalize()

	c, err := s.carts.Load(ctx, shopper)
	if err != nil {
		return nil, err
	}

	verr := info.Validate()
	if c.IsEmpty() {
		verr.Add("cart", "your cart is empty")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	lines, err := checkoutLines(c)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		placed, txErr = s.placeOrder(tx, shopper, info, lines)
		return txErr
	})
	if err != nil {
		s.logFailure(shopper, err)
		return nil, err
	}

	if clearErr := s.carts.Clear(ctx, shopper); clearErr != nil {
		s.logger.WithError(clearErr).WithFields(logrus.Fields{
			"order_id":   placed.ID,
			"session_id": shopper.SessionID,
		}).Warn("Order placed but cart could not be cleared")
	}

	unitsSoldTotal.Add(float64(c.TotalQuantity()))
	s.logger.WithFields(logrus.Fields{
		"order_id":   placed.ID,
		"session_id": shopper.SessionID,
		"user_id":    shopper.UserID,
		"total":      placed.Total.StringFixed(2),
		"lines":      len(lines),
	}).Info("Order placed")

	if s.notifier != nil && shopper.UserID != nil {
		s.notifier.NotifyPlaced(ctx, placed.ID)
	}

	return placed, nil
}

// checkoutLines converts cart keys to catalog ids. A key that cannot name a
// variant is treated like a deleted variant.
func checkoutLines(c *cart.Cart) ([]checkoutLine, error) {
	raw := c.Lines()
	lines := make([]checkoutLine, 0, len(raw))
	for _, l := range raw {
		id, err := cart.ParseVariantID(l.VariantID)
		if err != nil {
			return nil, &apperror.StaleCartItemError{VariantID: l.VariantID}
		}
		lines = append(lines, checkoutLine{key: l.VariantID, id: id, quantity: l.Quantity})
	}
	return lines, nil
}

func (s *Service) placeOrder(tx *gorm.DB, shopper cart.Shopper, info ShippingInfo, lines []checkoutLine) (*order.Order, error) {
	variants, err := lockVariants(tx, lines)
	if err != nil {
		return nil, err
	}

	// Every line is checked against the locked rows before anything is written
	for _, l := range lines {
		v := variants[l.id]
		if l.quantity > v.Stock {
			return nil, insufficient(v, l.quantity, v.Stock)
		}
	}

	total := decimal.Zero
	items := make([]order.OrderItem, 0, len(lines))
	for _, l := range lines {
		v := variants[l.id]
		total = total.Add(v.Subtotal(l.quantity))
		items = append(items, order.OrderItem{
			VariantID:    v.ID,
			ProductTitle: v.Product.Title,
			VariantLabel: v.DisplayName(),
			Quantity:     l.quantity,
			Price:        v.Price,
		})
	}

	placed := &order.Order{
		UserID:        shopper.UserID,
		CustomerName:  info.CustomerName,
		Phone:         info.Phone,
		AddressLine1:  info.AddressLine1,
		AddressLine2:  info.AddressLine2,
		City:          info.City,
		Pincode:       info.Pincode,
		Total:         total,
		Status:        order.OrderStatusPending,
		PaymentMethod: order.PaymentMethodCOD,
		PaymentStatus: order.PaymentStatusPending,
		Items:         items,
	}
	if err := tx.Create(placed).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	history := order.OrderStatusHistory{
		OrderID:   placed.ID,
		ToStatus:  order.OrderStatusPending,
		Note:      "order placed",
		ChangedBy: shopper.UserID,
	}
	if err := tx.Create(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to record status history: %w", err)
	}

	movements := make([]inventory.Movement, 0, len(lines))
	for _, l := range lines {
		v := variants[l.id]

		// The guard keeps stock non-negative even where row locks are unavailable
		res := tx.Model(&product.ProductVariant{}).
			Where("id = ? AND stock >= ?", l.id, l.quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", l.quantity))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to decrement stock for variant %d: %w", l.id, res.Error)
		}
		if res.RowsAffected == 0 {
			var current product.ProductVariant
			if err := tx.Select("stock").First(&current, l.id).Error; err != nil {
				return nil, fmt.Errorf("failed to re-read stock for variant %d: %w", l.id, err)
			}
			return nil, insufficient(v, l.quantity, current.Stock)
		}

		movements = append(movements, inventory.Movement{
			VariantID:   l.id,
			OrderID:     &placed.ID,
			StockBefore: v.Stock,
			StockAfter:  v.Stock - l.quantity,
			Reason:      inventory.ReasonCheckout,
			CreatedBy:   shopper.UserID,
		})
	}

	if err := inventory.Record(tx, movements...); err != nil {
		return nil, err
	}

	return placed, nil
}

// lockVariants loads every line's variant FOR UPDATE in ascending id order,
// so concurrent checkouts sharing variants always lock in the same order.
func lockVariants(tx *gorm.DB, lines []checkoutLine) (map[uint]*product.ProductVariant, error) {
	ordered := make([]checkoutLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].id < ordered[j].id })

	variants := make(map[uint]*product.ProductVariant, len(lines))
	for _, l := range ordered {
		var v product.ProductVariant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, l.id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &apperror.StaleCartItemError{VariantID: l.key}
			}
			return nil, fmt.Errorf("failed to lock variant %d: %w", l.id, err)
		}

		var p product.Product
		if err := tx.First(&p, v.ProductID).Error; err != nil {
			return nil, fmt.Errorf("failed to load product %d: %w", v.ProductID, err)
		}
		v.Product = &p
		variants[l.id] = &v
	}
	return variants, nil
}

func insufficient(v *product.ProductVariant, requested, available int) error {
	return &apperror.StockError{
		Kind:      apperror.InsufficientStock,
		VariantID: v.ID,
		Product:   v.DisplayName(),
		Available: available,
		Requested: requested,
	}
}

func (s *Service) logFailure(shopper cart.Shopper, err error) {
	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"session_id": shopper.SessionID,
		"result":     apperror.Code(err),
	})
	if apperror.Code(err) == "internal_error" {
		entry.Error("Checkout failed")
		return
	}
	entry.Info("Checkout rejected")
}
