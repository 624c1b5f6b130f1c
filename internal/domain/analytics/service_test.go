package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"github.com/your-org/hardware-admin/internal/pkg/testdb"
	"gorm.io/gorm"
)

type fakeOrderStats struct {
	counts  map[order.OrderStatus]int64
	revenue money.Money
	actors  []order.Actor
}

func (f *fakeOrderStats) CountByStatus(actor order.Actor) (map[order.OrderStatus]int64, error) {
	f.actors = append(f.actors, actor)
	return f.counts, nil
}

func (f *fakeOrderStats) Revenue(order.Actor) (money.Money, error) {
	return f.revenue, nil
}

func (f *fakeOrderStats) RecentOrders(order.Actor, int) ([]order.Order, error) {
	return []order.Order{{ID: 1}}, nil
}

func constant(n int64) func() (int64, error) {
	return func() (int64, error) { return n, nil }
}

func seedOrder(t *testing.T, db *gorm.DB, id, repID uint, status order.OrderStatus, items ...order.OrderItem) {
	t.Helper()
	total := money.Zero
	for i := range items {
		items[i].LineTotal = items[i].UnitPrice.Times(items[i].Quantity)
		total = total.Add(items[i].LineTotal)
	}
	o := order.Order{
		ID:               id,
		OrderNumber:      fmt.Sprintf("ORD-TEST-%05d", id),
		CustomerID:       1,
		RepresentativeID: repID,
		Status:           status,
		PaymentStatus:    order.PaymentStatusUnpaid,
		Subtotal:         total,
		Tax:              money.Zero,
		Discount:         money.Zero,
		Total:            total,
		Items:            items,
	}
	require.NoError(t, db.Create(&o).Error)
}

func item(productID uint, name string, qty int, price string) order.OrderItem {
	return order.OrderItem{ProductID: productID, PackSizeID: productID, SKU: name, Name: name, PackSize: "each", Quantity: qty, UnitPrice: money.MustFromString(price)}
}

func setupAnalyticsTest(t *testing.T) (*Service, *fakeOrderStats) {
	t.Helper()
	db := testdb.Open(t, &order.Order{}, &order.OrderItem{}, &order.OrderStatusHistory{})

	seedOrder(t, db, 1, 7, order.OrderStatusPending, item(1, "Wood Filler", 2, "24.99"), item(2, "Claw Hammer", 1, "32.00"))
	seedOrder(t, db, 2, 8, order.OrderStatusDelivered, item(2, "Claw Hammer", 4, "32.00"))
	seedOrder(t, db, 3, 7, order.OrderStatusCancelled, item(1, "Wood Filler", 50, "24.99"))

	stats := &fakeOrderStats{
		counts: map[order.OrderStatus]int64{
			order.OrderStatusPending:   1,
			order.OrderStatusDelivered: 1,
			order.OrderStatusCancelled: 1,
		},
		revenue: money.MustFromString("209.98"),
	}

	svc := NewService(db, stats, Counters{
		Products:  func(activeOnly bool) (int64, error) { return map[bool]int64{false: 12, true: 10}[activeOnly], nil },
		Customers: constant(4),
		Suppliers: constant(2),
		LowStock:  constant(3),
	})
	return svc, stats
}

func TestGetDashboardStats(t *testing.T) {
	svc, stats := setupAnalyticsTest(t)

	dashboard, err := svc.GetDashboardStats(order.Actor{UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(12), dashboard.TotalProducts)
	assert.Equal(t, int64(10), dashboard.ActiveProducts)
	assert.Equal(t, int64(4), dashboard.TotalCustomers)
	assert.Equal(t, int64(2), dashboard.TotalSuppliers)
	assert.Equal(t, int64(3), dashboard.LowStockItems)
	assert.Equal(t, int64(3), dashboard.TotalOrders)
	assert.Equal(t, "209.98", dashboard.TotalRevenue.String())
	assert.Equal(t, "104.99", dashboard.AvgOrderValue.String())
	assert.Len(t, dashboard.RecentOrders, 1)

	// cancelled orders are left out of month to date figures
	assert.Equal(t, int64(2), dashboard.OrdersThisMonth)
	assert.Equal(t, "209.98", dashboard.RevenueThisMonth.String())

	require.Len(t, stats.actors, 1)
	assert.False(t, stats.actors[0].Representative)
}

func TestTopProducts(t *testing.T) {
	svc, _ := setupAnalyticsTest(t)

	top, err := svc.TopProducts(order.Actor{UserID: 1}, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Claw Hammer", top[0].ProductName)
	assert.Equal(t, int64(5), top[0].TotalSold)
	assert.Equal(t, "160.00", top[0].Revenue.String())
	assert.Equal(t, int64(2), top[0].OrderCount)
	assert.Equal(t, int64(2), top[1].TotalSold, "cancelled orders do not count")

	own, err := svc.TopProducts(order.Actor{UserID: 7, Representative: true}, 5)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, int64(2), own[0].TotalSold)
	assert.Equal(t, int64(1), own[1].TotalSold)
}
