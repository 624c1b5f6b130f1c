// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"gorm.io/gorm"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 5
)

// OrderStats supplies the order figures of the dashboard
type OrderStats interface {
	CountByStatus(actor order.Actor) (map[order.OrderStatus]int64, error)
	Revenue(actor order.Actor) (money.Money, error)
	RecentOrders(actor order.Actor, limit int) ([]order.Order, error)
}

// Counters are the catalog and stock totals shown to every role
type Counters struct {
	Products  func(activeOnly bool) (int64, error)
	Customers func() (int64, error)
	Suppliers func() (int64, error)
	LowStock  func() (int64, error)
}

// Service builds the dashboard
type Service struct {
	db       *gorm.DB
	orders   OrderStats
	counters Counters
	now      func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, orders OrderStats, counters Counters) *Service {
	return &Service{
		db:       db,
		orders:   orders,
		counters: counters,
		now:      time.Now,
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Catalog metrics
	TotalProducts  int64 `json:"total_products"`
	ActiveProducts int64 `json:"active_products"`
	TotalCustomers int64 `json:"total_customers"`
	TotalSuppliers int64 `json:"total_suppliers"`
	LowStockItems  int64 `json:"low_stock_items"`

	// Order metrics
	TotalOrders      int64                       `json:"total_orders"`
	OrdersByStatus   map[order.OrderStatus]int64 `json:"orders_by_status"`
	TotalRevenue     money.Money                 `json:"total_revenue"`
	RevenueThisMonth money.Money                 `json:"revenue_this_month"`
	OrdersThisMonth  int64                       `json:"orders_this_month"`
	AvgOrderValue    money.Money                 `json:"avg_order_value"`

	RecentOrders []order.Order      `json:"recent_orders"`
	TopProducts  []ProductSalesData `json:"top_products"`
}

// ProductSalesData is one row of the best sellers table
type ProductSalesData struct {
	ProductID   uint        `json:"product_id"`
	ProductName string      `json:"product_name"`
	TotalSold   int64       `json:"total_sold"`
	Revenue     money.Money `json:"revenue"`
	OrderCount  int64       `json:"order_count"`
}

// GetDashboardStats retrieves the dashboard. Order figures are limited to the
// actor's own orders for representatives.
func (s *Service) GetDashboardStats(actor order.Actor) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalProducts, err = s.counters.Products(false); err != nil {
		return nil, err
	}
	if stats.ActiveProducts, err = s.counters.Products(true); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = s.counters.Customers(); err != nil {
		return nil, err
	}
	if stats.TotalSuppliers, err = s.counters.Suppliers(); err != nil {
		return nil, err
	}
	if stats.LowStockItems, err = s.counters.LowStock(); err != nil {
		return nil, err
	}

	if stats.OrdersByStatus, err = s.orders.CountByStatus(actor); err != nil {
		return nil, err
	}
	for _, count := range stats.OrdersByStatus {
		stats.TotalOrders += count
	}

	if stats.TotalRevenue, err = s.orders.Revenue(actor); err != nil {
		return nil, err
	}

	billable := stats.TotalOrders - stats.OrdersByStatus[order.OrderStatusCancelled]
	stats.AvgOrderValue = money.Zero
	if billable > 0 {
		stats.AvgOrderValue = money.New(stats.TotalRevenue.Div(decimal.NewFromInt(billable)))
	}

	if err := s.monthToDate(actor, stats); err != nil {
		return nil, err
	}

	if stats.RecentOrders, err = s.orders.RecentOrders(actor, recentOrdersLimit); err != nil {
		return nil, err
	}

	if stats.TopProducts, err = s.TopProducts(actor, topProductsLimit); err != nil {
		return nil, err
	}

	return stats, nil
}

// TopProducts ranks products by units sold on non-cancelled orders
func (s *Service) TopProducts(actor order.Actor, limit int) ([]ProductSalesData, error) {
	query := s.db.Table("order_items AS oi").
		Select(`oi.product_id,
			MAX(oi.name) AS product_name,
			SUM(oi.quantity) AS total_sold,
			COALESCE(SUM(oi.line_total), 0) AS revenue,
			COUNT(DISTINCT oi.order_id) AS order_count`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status <> ? AND o.deleted_at IS NULL", order.OrderStatusCancelled)

	if actor.Representative {
		query = query.Where("o.representative_id = ?", actor.UserID)
	}

	products := []ProductSalesData{}
	err := query.
		Group("oi.product_id").
		Order("total_sold DESC, oi.product_id").
		Limit(limit).
		Scan(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	return products, nil
}

func (s *Service) monthToDate(actor order.Actor, stats *DashboardStats) error {
	now := s.now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var result struct {
		Revenue money.Money
		Orders  int64
	}
	query := s.db.Model(&order.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS orders").
		Where("status <> ? AND created_at >= ?", order.OrderStatusCancelled, thisMonth)
	if actor.Representative {
		query = query.Where("representative_id = ?", actor.UserID)
	}

	if err := query.Scan(&result).Error; err != nil {
		return fmt.Errorf("failed to get monthly revenue: %w", err)
	}

	stats.RevenueThisMonth = result.Revenue
	stats.OrdersThisMonth = result.Orders
	return nil
}
