package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/money"
)

type fakeCatalog struct {
	items map[string]*CatalogItem
}

func (f *fakeCatalog) LookupPackSize(_ context.Context, productID uint, packSize string) (*CatalogItem, error) {
	item, ok := f.items[fmt.Sprintf("%d/%s", productID, packSize)]
	if !ok {
		return nil, ErrProductUnavailable
	}
	copied := *item
	return &copied, nil
}

type fakeStock map[uint]int

func (f fakeStock) Available(_ context.Context, packSizeID uint) (int, error) {
	return f[packSizeID], nil
}

func newTestService(mode string) (*Service, *fakeCatalog, fakeStock) {
	catalog := &fakeCatalog{items: map[string]*CatalogItem{
		"1/500g": {ProductID: 1, PackSizeID: 11, ProductName: "Wood Filler", PackSize: "500g", UnitPrice: money.MustFromString("24.99")},
		"2/1kg":  {ProductID: 2, PackSizeID: 21, ProductName: "Tile Grout", PackSize: "1kg", UnitPrice: money.MustFromString("32.00")},
	}}
	stock := fakeStock{11: 20, 21: 5}
	policy := NewQuantityPolicy(config.CartConfig{StockPolicy: mode, MaxLineQuantity: 100})
	return NewService(NewMemoryStore(), catalog, stock, policy, logger.Discard()), catalog, stock
}

func TestServiceAddUpdateRemove(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	snap, err := svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, "49.98", snap.Total.String())

	snap, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: " 500g ", Quantity: 3})
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "124.95", snap.Total.String())

	snap, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 2, PackSize: "1kg", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, snap.Count)
	assert.Equal(t, "156.95", snap.Total.String())

	zero := 0
	snap, err = svc.UpdateItem(ctx, "s1", snap.Items[0].ID, &UpdateItemRequest{Quantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, "32.00", snap.Total.String())

	snap, err = svc.RemoveItem(ctx, "s1", snap.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	assert.True(t, snap.Total.IsZero())
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "a", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 1})
	require.NoError(t, err)

	other, err := svc.GetCart(ctx, "b")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestServiceRequiresSession(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyReject)

	_, err := svc.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionRequired)
	assert.ErrorIs(t, svc.ClearCart(context.Background(), ""), ErrSessionRequired)
}

func TestServiceAddRejectsBadInput(t *testing.T) {
	svc, catalog, _ := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "5kg", Quantity: 1})
	assert.ErrorIs(t, err, ErrProductUnavailable)

	catalog.items["1/500g"].UnitPrice = money.MustFromString("-1")
	_, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	snap, err := svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestServiceStockPolicyReject(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 2, PackSize: "1kg", Quantity: 4})
	require.NoError(t, err)

	// 4 in cart + 2 more exceeds the 5 on hand
	_, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 2, PackSize: "1kg", Quantity: 2})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	snap, err := svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Count)

	nine := 9
	_, err = svc.UpdateItem(ctx, "s1", snap.Items[0].ID, &UpdateItemRequest{Quantity: &nine})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestServiceStockPolicyClamp(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyClamp)
	ctx := context.Background()

	snap, err := svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 2, PackSize: "1kg", Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Count)
	assert.Equal(t, "160.00", snap.Total.String())

	snap, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 2, PackSize: "1kg", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Count)

	nine := 9
	snap, err = svc.UpdateItem(ctx, "s1", snap.Items[0].ID, &UpdateItemRequest{Quantity: &nine})
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Count)
}

func TestServiceUpdateUnknownLineIsNoOp(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	before, err := svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 2})
	require.NoError(t, err)

	three := 3
	after, err := svc.UpdateItem(ctx, "s1", "missing", &UpdateItemRequest{Quantity: &three})
	require.NoError(t, err)
	assert.Equal(t, before.Count, after.Count)
	assert.True(t, before.Total.Equal(after.Total))

	after, err = svc.RemoveItem(ctx, "s1", "missing")
	require.NoError(t, err)
	assert.Equal(t, before.Count, after.Count)
}

func TestServiceCheckout(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	err := svc.Checkout(ctx, "s1", func(Snapshot) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 2})
	require.NoError(t, err)

	failure := errors.New("order failed")
	err = svc.Checkout(ctx, "s1", func(Snapshot) error { return failure })
	assert.ErrorIs(t, err, failure)

	snap, err := svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count, "failed checkout keeps the cart")

	var submitted Snapshot
	err = svc.Checkout(ctx, "s1", func(s Snapshot) error {
		submitted = s
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "49.98", submitted.Total.String())

	snap, err = svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

type flakyStore struct {
	*MemoryStore
	mu        sync.Mutex
	failSaves bool
}

func (f *flakyStore) setFailSaves(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaves = fail
}

func (f *flakyStore) Save(ctx context.Context, sessionID string, lines []Line) error {
	f.mu.Lock()
	fail := f.failSaves
	f.mu.Unlock()
	if fail {
		return errors.New("redis down")
	}
	return f.MemoryStore.Save(ctx, sessionID, lines)
}

func TestServiceCheckoutStandsWhenClearFails(t *testing.T) {
	base, catalog, stock := newTestService(config.StockPolicyReject)
	store := &flakyStore{MemoryStore: NewMemoryStore()}
	svc := NewService(store, catalog, stock, base.policy, logger.Discard())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 2})
	require.NoError(t, err)

	submits := 0
	submit := func(Snapshot) error {
		submits++
		return nil
	}

	store.setFailSaves(true)
	require.NoError(t, svc.Checkout(ctx, "s1", submit))
	assert.Equal(t, 1, submits)

	store.setFailSaves(false)
	snap, err := svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty(), "submitted lines are not shown again")

	err = svc.Checkout(ctx, "s1", submit)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 1, submits, "the same cart is never submitted twice")

	snap, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 2, PackSize: "1kg", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "32.00", snap.Total.String())

	require.NoError(t, svc.Checkout(ctx, "s1", submit))
	assert.Equal(t, 2, submits)
}

func TestServiceValidate(t *testing.T) {
	svc, catalog, stock := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 2, PackSize: "1kg", Quantity: 3})
	require.NoError(t, err)

	result, err := svc.Validate(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)

	catalog.items["1/500g"].UnitPrice = money.MustFromString("26.50")
	stock[21] = 1

	result, err = svc.Validate(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, IssuePriceChanged, result.Issues[0].Code)
	assert.Equal(t, IssueInsufficientStock, result.Issues[1].Code)

	// the cart keeps the price captured when the line was added
	assert.Equal(t, "145.98", result.Cart.Total.String())

	delete(catalog.items, "2/1kg")
	result, err = svc.Validate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, IssueUnavailable, result.Issues[len(result.Issues)-1].Code)
}

func TestServiceConcurrentAdds(t *testing.T) {
	svc, _, _ := newTestService(config.StockPolicyReject)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddItem(ctx, "s1", &AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 1})
		}()
	}
	wg.Wait()

	snap, err := svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 20, snap.Count)
	assert.Equal(t, "499.80", snap.Total.String())
}
