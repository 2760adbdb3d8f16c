package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/saree-store/internal/domain/cart"
	"github.com/your-org/saree-store/internal/domain/inventory"
	"github.com/your-org/saree-store/internal/domain/order"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/domain/user"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"github.com/your-org/saree-store/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	store    *cart.RedisStore
	carts    *cart.Service
	notified []uint
	svc      *Service
}

func (f *fixture) NotifyPlaced(_ context.Context, orderID uint) {
	f.notified = append(f.notified, orderID)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t,
		&user.User{},
		&product.Category{}, &product.Product{}, &product.ProductVariant{},
		&order.Order{}, &order.OrderItem{}, &order.OrderStatusHistory{},
		&inventory.StockMovement{},
	)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := testutil.NewLogger()
	f := &fixture{
		db:    db,
		store: cart.NewRedisStore(client, time.Hour),
	}
	f.carts = cart.NewService(product.NewService(db, logger), f.store, logger)
	f.svc = NewService(db, f.carts, f, logger)
	return f
}

func (f *fixture) variant(t *testing.T, title, price string, stock int) *product.ProductVariant {
	t.Helper()
	p := &product.Product{
		Title:     title,
		Slug:      product.Slugify(title),
		BasePrice: decimal.RequireFromString(price),
		Active:    true,
		Variants: []product.ProductVariant{{
			BlouseOption: product.WithBlouse,
			Price:        decimal.RequireFromString(price),
			Stock:        stock,
		}},
	}
	require.NoError(t, f.db.Create(p).Error)
	return &p.Variants[0]
}

// fill writes lines straight to the session, bypassing the cart's stock rule
func (f *fixture) fill(t *testing.T, sessionID string, lines ...cart.Line) cart.Shopper {
	t.Helper()
	c := cart.New()
	for _, l := range lines {
		c.Set(l.VariantID, l.Quantity)
	}
	require.NoError(t, f.store.Save(context.Background(), sessionID, c))
	return cart.Shopper{SessionID: sessionID}
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var v product.ProductVariant
	require.NoError(t, f.db.First(&v, id).Error)
	return v.Stock
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func key(v *product.ProductVariant) string {
	return fmt.Sprint(v.ID)
}

func validShipping() ShippingInfo {
	return ShippingInfo{
		CustomerName: "Lakshmi Iyer",
		Phone:        "9876543210",
		AddressLine1: "12 Temple Street",
		City:         "Madurai",
		Pincode:      "625001",
	}
}

func TestCheckoutPlacesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.variant(t, "Kanjivaram Silk", "500.00", 5)
	b := f.variant(t, "Banarasi Georgette", "1200.00", 1)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(a), Quantity: 2}, cart.Line{VariantID: key(b), Quantity: 1})

	placed, err := f.svc.Checkout(ctx, shopper, validShipping())
	require.NoError(t, err)

	assert.True(t, placed.Total.Equal(decimal.RequireFromString("2200.00")), placed.Total.String())
	assert.Equal(t, 3, f.stock(t, a.ID))
	assert.Equal(t, 0, f.stock(t, b.ID))

	var stored order.Order
	require.NoError(t, f.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).First(&stored, placed.ID).Error)
	assert.Equal(t, order.OrderStatusPending, stored.Status)
	assert.Equal(t, order.PaymentMethodCOD, stored.PaymentMethod)
	assert.Equal(t, order.PaymentStatusPending, stored.PaymentStatus)
	assert.Nil(t, stored.UserID)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, a.ID, stored.Items[0].VariantID)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, "Kanjivaram Silk - With Blouse", stored.Items[0].VariantLabel)
	assert.True(t, stored.Total.Equal(stored.ItemsTotal()))

	c, err := f.carts.Load(ctx, shopper)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	var movements []inventory.StockMovement
	require.NoError(t, f.db.Order("variant_id ASC").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, -2, movements[0].Delta)
	assert.Equal(t, inventory.ReasonCheckout, movements[0].Reason)
	assert.Equal(t, placed.ID, *movements[0].OrderID)

	assert.Equal(t, int64(1), f.count(t, &order.OrderStatusHistory{}))
	assert.Empty(t, f.notified, "guest orders are not notified")
}

func TestCheckoutInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.variant(t, "Chanderi Cotton", "800.00", 4)
	c := f.variant(t, "Paithani Silk", "9000.00", 2)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(a), Quantity: 1}, cart.Line{VariantID: key(c), Quantity: 3})

	_, err := f.svc.Checkout(ctx, shopper, validShipping())

	var serr *apperror.StockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, apperror.InsufficientStock, serr.Kind)
	assert.Equal(t, c.ID, serr.VariantID)
	assert.Equal(t, 2, serr.Available)
	assert.Equal(t, 3, serr.Requested)

	assert.Equal(t, 4, f.stock(t, a.ID))
	assert.Equal(t, 2, f.stock(t, c.ID))
	assert.Zero(t, f.count(t, &order.Order{}))
	assert.Zero(t, f.count(t, &order.OrderItem{}))
	assert.Zero(t, f.count(t, &inventory.StockMovement{}))

	remaining, err := f.carts.Load(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining.Quantity(key(c)))
	assert.Equal(t, 1, remaining.Quantity(key(a)))
}

// The row lock and the pre-check pass, then stock drops before the guarded decrement
func TestCheckoutGuardedDecrementRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.variant(t, "Kota Doria", "700.00", 4)
	b := f.variant(t, "Pochampally Ikat", "3100.00", 3)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(a), Quantity: 1}, cart.Line{VariantID: key(b), Quantity: 2})

	const callback = "test:drain_stock"
	require.NoError(t, f.db.Callback().Create().After("gorm:create").Register(callback, func(db *gorm.DB) {
		if _, ok := db.Statement.Model.(*order.OrderStatusHistory); !ok {
			return
		}
		err := db.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE product_variants SET stock = 1 WHERE id = ?", b.ID).Error
		if err != nil {
			_ = db.AddError(err)
		}
	}))
	t.Cleanup(func() { _ = f.db.Callback().Create().Remove(callback) })

	_, err := f.svc.Checkout(ctx, shopper, validShipping())

	var serr *apperror.StockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, apperror.InsufficientStock, serr.Kind)
	assert.Equal(t, b.ID, serr.VariantID)
	assert.Equal(t, 1, serr.Available)
	assert.Equal(t, 2, serr.Requested)

	assert.Equal(t, 4, f.stock(t, a.ID), "first decrement is rolled back")
	assert.Equal(t, 3, f.stock(t, b.ID), "drain inside the transaction is rolled back")
	assert.Zero(t, f.count(t, &order.Order{}))
	assert.Zero(t, f.count(t, &order.OrderItem{}))
	assert.Zero(t, f.count(t, &order.OrderStatusHistory{}))
	assert.Zero(t, f.count(t, &inventory.StockMovement{}))

	remaining, err := f.carts.Load(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining.Quantity(key(b)))
	assert.Equal(t, 1, remaining.Quantity(key(a)))
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.variant(t, "Tussar Silk", "2500.00", 3)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(v), Quantity: 1})

	tests := []struct {
		name  string
		edit  func(*ShippingInfo)
		field string
	}{
		{"short phone", func(s *ShippingInfo) { s.Phone = "98765" }, "phone"},
		{"phone with letters", func(s *ShippingInfo) { s.Phone = "98765abcde" }, "phone"},
		{"long pincode", func(s *ShippingInfo) { s.Pincode = "6250011" }, "pincode"},
		{"missing name", func(s *ShippingInfo) { s.CustomerName = "   " }, "customer_name"},
		{"missing address", func(s *ShippingInfo) { s.AddressLine1 = "" }, "address_line1"},
		{"missing city", func(s *ShippingInfo) { s.City = "" }, "city"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validShipping()
			tt.edit(&info)

			_, err := f.svc.Checkout(ctx, shopper, info)
			var verr *apperror.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	assert.Equal(t, 3, f.stock(t, v.ID))
	assert.Zero(t, f.count(t, &order.Order{}))
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), cart.Shopper{SessionID: "nobody"}, validShipping())
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "cart")
}

func TestCheckoutStaleCartItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v := f.variant(t, "Patola Silk", "7000.00", 5)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(v), Quantity: 1}, cart.Line{VariantID: "999", Quantity: 1})

	_, err := f.svc.Checkout(ctx, shopper, validShipping())
	var stale *apperror.StaleCartItemError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "999", stale.VariantID)
	assert.Equal(t, "stale_cart_item", apperror.Code(err))

	assert.Equal(t, 5, f.stock(t, v.ID))
	assert.Zero(t, f.count(t, &order.Order{}))
}

func TestCheckoutSnapshotsPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v := f.variant(t, "Bandhani Silk", "1999.99", 5)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(v), Quantity: 2})

	placed, err := f.svc.Checkout(ctx, shopper, validShipping())
	require.NoError(t, err)
	assert.True(t, placed.Total.Equal(decimal.RequireFromString("3999.98")))

	require.NoError(t, f.db.Model(&product.ProductVariant{}).Where("id = ?", v.ID).
		Update("price", decimal.RequireFromString("2499.00")).Error)

	var item order.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", placed.ID).First(&item).Error)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("1999.99")))

	var stored order.Order
	require.NoError(t, f.db.First(&stored, placed.ID).Error)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("3999.98")))
}

func TestCheckoutNotifiesSignedInCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u := &user.User{Email: "asha@example.com", PasswordHash: "x", FirstName: "Asha", IsActive: true}
	require.NoError(t, f.db.Create(u).Error)

	v := f.variant(t, "Pochampally Ikat", "3200.00", 2)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(v), Quantity: 1})
	shopper.UserID = &u.ID

	placed, err := f.svc.Checkout(ctx, shopper, validShipping())
	require.NoError(t, err)
	require.NotNil(t, placed.UserID)
	assert.Equal(t, u.ID, *placed.UserID)
	assert.Equal(t, []uint{placed.ID}, f.notified)
}

func TestConcurrentCheckoutForLastUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v := f.variant(t, "Gadwal Silk", "4500.00", 1)
	shoppers := []cart.Shopper{
		f.fill(t, "first", cart.Line{VariantID: key(v), Quantity: 1}),
		f.fill(t, "second", cart.Line{VariantID: key(v), Quantity: 1}),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(shoppers))
	for i, shopper := range shoppers {
		wg.Add(1)
		go func(i int, shopper cart.Shopper) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(ctx, shopper, validShipping())
		}(i, shopper)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.IsInsufficientStock(err), err.Error())
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.stock(t, v.ID))
	assert.Equal(t, int64(1), f.count(t, &order.Order{}))
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ok := f.variant(t, "Mangalagiri Cotton", "650.00", 3)
	short := f.variant(t, "Baluchari Silk", "5200.00", 1)
	shopper := f.fill(t, "s1", cart.Line{VariantID: key(ok), Quantity: 2}, cart.Line{VariantID: key(short), Quantity: 2})

	preview, err := f.svc.Preview(ctx, shopper)
	require.NoError(t, err)
	assert.False(t, preview.Ready)
	require.Len(t, preview.Issues, 1)
	assert.Equal(t, key(short), preview.Issues[0].VariantID)
	assert.Equal(t, 1, preview.Issues[0].Available)
	assert.True(t, preview.Cart.Total.Equal(decimal.RequireFromString("11700.00")))
}
