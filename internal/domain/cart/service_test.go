package cart

import (
	"context"
	"math"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"github.com/your-org/saree-store/internal/testutil"
)

// memoryStore keeps carts as JSON so tests exercise the same encoding as redis
type memoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: make(map[string][]byte)}
}

func (m *memoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := New()
	if data, ok := m.carts[sessionID]; ok {
		if err := json.Unmarshal(data, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (m *memoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.IsEmpty() {
		delete(m.carts, sessionID)
		return nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.carts[sessionID] = data
	return nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

type fakeCatalog map[uint]*product.ProductVariant

func (f fakeCatalog) GetVariant(_ context.Context, id uint) (*product.ProductVariant, error) {
	v, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("variant %d: %w", id, apperror.ErrNotFound)
	}
	return v, nil
}

func newVariant(id uint, price string, stock int) *product.ProductVariant {
	return &product.ProductVariant{
		ID:           id,
		BlouseOption: product.WithBlouse,
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		Product:      &product.Product{Title: fmt.Sprintf("Saree %d", id)},
	}
}

func newTestService() (*Service, fakeCatalog, *memoryStore) {
	catalog := fakeCatalog{
		1: newVariant(1, "500.00", 5),
		2: newVariant(2, "1200.00", 1),
		3: newVariant(3, "899.50", 0),
	}
	store := newMemoryStore()
	return NewService(catalog, store, testutil.NewLogger()), catalog, store
}

var shopper = Shopper{SessionID: "sess-1"}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and increments line", func(t *testing.T) {
		svc, _, _ := newTestService()

		line, err := svc.Add(ctx, shopper, "1", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, line.Quantity)

		line, err = svc.Add(ctx, shopper, "1", 2)
		require.NoError(t, err)
		assert.Equal(t, 3, line.Quantity)
		assert.True(t, line.Subtotal.Equal(decimal.RequireFromString("1500.00")))
		assert.Equal(t, "Saree 1 - With Blouse", line.Name)
	})

	t.Run("out of stock", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Add(ctx, shopper, "3", 1)
		assert.True(t, apperror.IsOutOfStock(err))
	})

	t.Run("insufficient stock leaves cart unchanged", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Add(ctx, shopper, "2", 1)
		require.NoError(t, err)

		_, err = svc.Add(ctx, shopper, "2", 1)
		require.True(t, apperror.IsInsufficientStock(err))

		var se *apperror.StockError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 1, se.Available)
		assert.Equal(t, 2, se.Requested)

		c, err := svc.Load(ctx, shopper)
		require.NoError(t, err)
		assert.Equal(t, 1, c.Quantity("2"))
	})

	t.Run("huge quantity is insufficient and keeps the line", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Add(ctx, shopper, "1", 2)
		require.NoError(t, err)

		_, err = svc.Add(ctx, shopper, "1", math.MaxInt)
		require.True(t, apperror.IsInsufficientStock(err))

		var se *apperror.StockError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 5, se.Available)
		assert.Equal(t, math.MaxInt, se.Requested)

		c, err := svc.Load(ctx, shopper)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Quantity("1"))
	})

	t.Run("unknown variant", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Add(ctx, shopper, "42", 1)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = svc.Add(ctx, shopper, "not-a-number", 1)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("rejects non-positive delta", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Add(ctx, shopper, "1", 0)
		var verr *apperror.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("requires session", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Add(ctx, Shopper{}, "1", 1)
		var verr *apperror.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestAddNeverExceedsStock(t *testing.T) {
	ctx := context.Background()
	svc, catalog, _ := newTestService()

	for i := 0; i < 20; i++ {
		_, _ = svc.Add(ctx, shopper, "1", 1+i%3)
		c, err := svc.Load(ctx, shopper)
		require.NoError(t, err)
		assert.LessOrEqual(t, c.Quantity("1"), catalog[1].Stock)
	}
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Add(ctx, shopper, "1", 2)
	require.NoError(t, err)

	snap, err := svc.Adjust(ctx, shopper, "1", ActionIncrement)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Lines[0].Quantity)

	for i := 0; i < 3; i++ {
		snap, err = svc.Adjust(ctx, shopper, "1", ActionDecrement)
		require.NoError(t, err)
	}
	assert.Empty(t, snap.Lines)
	assert.True(t, snap.Total.IsZero())

	c, err := svc.Load(ctx, shopper)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	// absent line is a no-op
	snap, err = svc.Adjust(ctx, shopper, "2", ActionIncrement)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)

	_, err = svc.Adjust(ctx, shopper, "1", "double")
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAdjustIncrementClamps(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Add(ctx, shopper, "2", 1)
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, shopper, "2", ActionIncrement)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Add(ctx, shopper, "1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, shopper, "2", 1)
	require.NoError(t, err)

	snap, err := svc.Remove(ctx, shopper, "1")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "2", snap.Lines[0].VariantID)

	_, err = svc.Remove(ctx, shopper, "99")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, shopper))
	snap, err = svc.Snapshot(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, catalog, _ := newTestService()

	_, err := svc.Add(ctx, shopper, "2", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, shopper, "1", 2)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "2", snap.Lines[0].VariantID, "insertion order is kept")
	assert.Equal(t, "1", snap.Lines[1].VariantID)
	assert.True(t, snap.Total.Equal(decimal.RequireFromString("2200.00")))
	assert.Equal(t, 3, snap.TotalQuantity)
	assert.Equal(t, 2, snap.ItemCount)

	// variant 2 disappears from the catalog
	delete(catalog, 2)
	snap, err = svc.Snapshot(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, snap.Removed)
	require.Len(t, snap.Lines, 1)
	assert.True(t, snap.Total.Equal(decimal.RequireFromString("1000")))

	c, err := svc.Load(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Quantity("2"))
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Add(ctx, Shopper{SessionID: "a"}, "1", 1)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, Shopper{SessionID: "b"})
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
}
