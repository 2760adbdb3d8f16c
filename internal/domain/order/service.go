// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/domain/inventory"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"github.com/your-org/saree-store/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier is told about order events after they commit. Implementations
// must not block the caller.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order)
	OrderStatusChanged(ctx context.Context, o *Order, from OrderStatus)
}

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(context.Context, *Order)                     {}
func (noopNotifier) OrderStatusChanged(context.Context, *Order, OrderStatus) {}

// Service handles order reads and the operator lifecycle
type Service struct {
	db       *gorm.DB
	logger   *logrus.Logger
	notifier Notifier
}

// NewService creates a new order service. A nil notifier disables notifications.
func NewService(db *gorm.DB, logger *logrus.Logger, notifier Notifier) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		db:       db,
		logger:   logger,
		notifier: notifier,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=20"`
	Status OrderStatus `form:"status"`
	Phone  string      `form:"phone"`
}

// OrderListResponse represents a page of orders
type OrderListResponse struct {
	Orders     []Order               `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// Rejection explains why one order of a bulk action was not changed
type Rejection struct {
	OrderID uint   `json:"order_id"`
	Reason  string `json:"reason"`
}

// BulkResult reports the outcome of a bulk status action
type BulkResult struct {
	Updated  []uint      `json:"updated"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// Track returns an order only when both id and phone match. A mismatch on
// either is reported as not found without saying which.
func (s *Service) Track(ctx context.Context, orderID uint, phone string) (*Order, error) {
	phone = strings.TrimSpace(phone)
	if orderID == 0 || phone == "" {
		return nil, fmt.Errorf("order: %w", apperror.ErrNotFound)
	}

	var order Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND phone = ?", orderID, phone).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to track order: %w", err)
	}
	return &order, nil
}

// GetOrder retrieves an order with items and status history
func (s *Service) GetOrder(ctx context.Context, id uint) (*Order, error) {
	return s.findOrder(ctx, s.db.WithContext(ctx).Where("id = ?", id))
}

// GetUserOrder retrieves an order only if it belongs to userID
func (s *Service) GetUserOrder(ctx context.Context, userID, id uint) (*Order, error) {
	return s.findOrder(ctx, s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID))
}

func (s *Service) findOrder(_ context.Context, query *gorm.DB) (*Order, error) {
	var order Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// ListUserOrders returns a signed-in customer's orders, newest first
func (s *Service) ListUserOrders(ctx context.Context, userID uint, page, limit int) (*OrderListResponse, error) {
	query := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)
	return s.list(query, page, limit)
}

// ListOrders returns orders for the operator, optionally filtered
func (s *Service) ListOrders(ctx context.Context, req *OrderListRequest) (*OrderListResponse, error) {
	query := s.db.WithContext(ctx).Model(&Order{})
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperror.NewValidationError("status", "unknown order status")
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.Phone != "" {
		query = query.Where("phone = ?", strings.TrimSpace(req.Phone))
	}
	return s.list(query, req.Page, req.Limit)
}

func (s *Service) list(query *gorm.DB, page, limit int) (*OrderListResponse, error) {
	page, limit = pagination.Normalize(page, limit)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &OrderListResponse{
		Orders:     orders,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// UpdateStatus applies an operator bulk action. Orders whose current status
// does not allow the move are rejected individually; the rest change together
// in one transaction. Cancelling returns the items' units to stock.
func (s *Service) UpdateStatus(ctx context.Context, orderIDs []uint, to OrderStatus, actorID *uint, note string) (*BulkResult, error) {
	if !to.Valid() {
		return nil, apperror.NewValidationError("status", "unknown order status")
	}
	if len(orderIDs) == 0 {
		return nil, apperror.NewValidationError("order_ids", "at least one order is required")
	}

	ids := uniqueSorted(orderIDs)
	result := &BulkResult{Updated: make([]uint, 0, len(ids))}
	var changed []changedOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			order, err := lockOrder(tx, id)
			if errors.Is(err, apperror.ErrNotFound) {
				result.Rejected = append(result.Rejected, Rejection{OrderID: id, Reason: "order not found"})
				continue
			}
			if err != nil {
				return err
			}

			from := order.Status
			if err := s.transition(tx, order, to, actorID, note); err != nil {
				var terr *apperror.TransitionError
				if errors.As(err, &terr) {
					result.Rejected = append(result.Rejected, Rejection{OrderID: id, Reason: terr.Error()})
					continue
				}
				return err
			}
			result.Updated = append(result.Updated, id)
			changed = append(changed, changedOrder{order: order, from: from})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range changed {
		statusTransitionsTotal.WithLabelValues(string(c.from), string(to)).Inc()
		s.notifyStatus(ctx, c.order, c.from)
	}

	s.logger.WithFields(logrus.Fields{
		"status":   to,
		"updated":  len(result.Updated),
		"rejected": len(result.Rejected),
	}).Info("Bulk order status update")

	return result, nil
}

// CancelByCustomer lets a signed-in customer cancel their own pending order
func (s *Service) CancelByCustomer(ctx context.Context, userID, orderID uint, reason string) (*Order, error) {
	var order *Order
	var from OrderStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID == nil || *order.UserID != userID {
			return fmt.Errorf("order: %w", apperror.ErrNotFound)
		}
		if order.Status != OrderStatusPending {
			return &apperror.TransitionError{OrderID: order.ID, From: string(order.Status), To: string(OrderStatusCancelled)}
		}

		from = order.Status
		if reason == "" {
			reason = "cancelled by customer"
		}
		return s.transition(tx, order, OrderStatusCancelled, &userID, reason)
	})
	if err != nil {
		return nil, err
	}

	statusTransitionsTotal.WithLabelValues(string(from), string(OrderStatusCancelled)).Inc()
	s.notifyStatus(ctx, order, from)
	return order, nil
}

// UpdatePaymentStatus records the COD collection outcome
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID uint, status PaymentStatus) (*Order, error) {
	if !status.Valid() {
		return nil, apperror.NewValidationError("payment_status", "must be pending, paid or failed")
	}

	result := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", orderID).Update("payment_status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("order %d: %w", orderID, apperror.ErrNotFound)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":       orderID,
		"payment_status": status,
	}).Info("Payment status updated")

	return s.GetOrder(ctx, orderID)
}

type changedOrder struct {
	order *Order
	from  OrderStatus
}

// transition moves a locked order to status `to`, writing history and, for
// cancellation, returning units to stock. Callers count the transition once
// the transaction commits.
func (s *Service) transition(tx *gorm.DB, order *Order, to OrderStatus, actorID *uint, note string) error {
	from := order.Status
	if !from.CanTransitionTo(to) {
		return &apperror.TransitionError{OrderID: order.ID, From: string(from), To: string(to)}
	}

	if err := tx.Model(order).Update("status", to).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	history := OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		ChangedBy:  actorID,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}

	if to == OrderStatusCancelled {
		if err := restock(tx, order, actorID); err != nil {
			return err
		}
	}

	order.Status = to
	return nil
}

// restock returns each item's units to its variant inside tx
func restock(tx *gorm.DB, order *Order, actorID *uint) error {
	var items []OrderItem
	if err := tx.Where("order_id = ?", order.ID).Order("variant_id ASC").Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	movements := make([]inventory.Movement, 0, len(items))
	for _, item := range items {
		var variant product.ProductVariant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&variant, item.VariantID).Error
		if err != nil {
			return fmt.Errorf("failed to lock variant %d: %w", item.VariantID, err)
		}

		err = tx.Model(&product.ProductVariant{}).
			Where("id = ?", item.VariantID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to restock variant %d: %w", item.VariantID, err)
		}

		movements = append(movements, inventory.Movement{
			VariantID:   item.VariantID,
			OrderID:     &order.ID,
			StockBefore: variant.Stock,
			StockAfter:  variant.Stock + item.Quantity,
			Reason:      inventory.ReasonCancelRestock,
			CreatedBy:   actorID,
		})
	}

	return inventory.Record(tx, movements...)
}

func lockOrder(tx *gorm.DB, id uint) (*Order, error) {
	var order Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock order %d: %w", id, err)
	}
	return &order, nil
}

func (s *Service) notifyStatus(ctx context.Context, order *Order, from OrderStatus) {
	if order.UserID == nil {
		return
	}
	full, err := s.loadForNotification(ctx, order.ID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to load order for notification")
		return
	}
	s.notifier.OrderStatusChanged(ctx, full, from)
}

// NotifyPlaced loads the order with its customer and hands it to the notifier
func (s *Service) NotifyPlaced(ctx context.Context, orderID uint) {
	full, err := s.loadForNotification(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("Failed to load order for notification")
		return
	}
	if full.User == nil {
		return
	}
	s.notifier.OrderPlaced(ctx, full)
}

func (s *Service) loadForNotification(ctx context.Context, id uint) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).Preload("User").Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
