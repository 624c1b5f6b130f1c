// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/domain/customer"
	"github.com/your-org/hardware-admin/internal/domain/inventory"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
	"github.com/your-org/hardware-admin/internal/queue"
	"gorm.io/gorm"
)

// CartCheckout hands the session cart to an order and clears it on success
type CartCheckout interface {
	Checkout(ctx context.Context, sessionID string, submit func(cart.Snapshot) error) error
}

// StockKeeper moves stock for orders inside the order transaction
type StockKeeper interface {
	DeductForOrder(tx *gorm.DB, ref inventory.Reference, lines []inventory.StockLine) ([]inventory.StockAlert, error)
	RestoreForOrder(tx *gorm.DB, ref inventory.Reference, lines []inventory.StockLine) error
	PublishAlerts(alerts []inventory.StockAlert)
}

// CustomerFinder resolves the customer an order is billed to
type CustomerFinder interface {
	GetActive(id uint) (*customer.Customer, error)
}

// InvoiceQueue schedules invoice emails
type InvoiceQueue interface {
	EnqueueInvoiceEmail(payload queue.InvoiceEmailPayload, opts ...asynq.Option) error
}

// Actor is the user acting on orders. Representatives only see and cancel their
// own orders.
type Actor struct {
	UserID         uint
	Representative bool
}

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	carts     CartCheckout
	stock     StockKeeper
	customers CustomerFinder
	invoices  InvoiceQueue
	logger    *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, carts CartCheckout, stock StockKeeper,
	customers CustomerFinder, invoices InvoiceQueue, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		carts:     carts,
		stock:     stock,
		customers: customers,
		invoices:  invoices,
		logger:    logger,
	}
}

// CheckoutRequest represents order creation data
type CheckoutRequest struct {
	CustomerID uint        `json:"customer_id" binding:"required"`
	Notes      string      `json:"notes,omitempty"`
	Discount   money.Money `json:"discount"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page             int    `form:"page,default=1"`
	Limit            int    `form:"limit,default=20"`
	Status           string `form:"status"`
	CustomerID       uint   `form:"customer_id"`
	RepresentativeID uint   `form:"representative_id"`
	Search           string `form:"search"`
	SortBy           string `form:"sort_by,default=created_at"`
	SortOrder        string `form:"sort_order,default=desc"`
	DateFrom         string `form:"date_from"`
	DateTo           string `form:"date_to"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order               `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// UpdateStatusRequest represents an order status change
type UpdateStatusRequest struct {
	Status  OrderStatus `json:"status" binding:"required"`
	Comment string      `json:"comment"`
}

// UpdatePaymentRequest represents a payment status change
type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required"`
	Comment       string        `json:"comment"`
}

// CancelRequest represents an order cancellation
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Checkout turns the session cart into an order for a customer. The order, its
// items and the stock deduction are written in one transaction; the cart is cleared
// only when that transaction commits.
func (s *Service) Checkout(ctx context.Context, sessionID string, actor Actor, req *CheckoutRequest) (*Order, error) {
	if req.Discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}

	buyer, err := s.customers.GetActive(req.CustomerID)
	if err != nil {
		return nil, err
	}

	var created *Order
	var alerts []inventory.StockAlert
	err = s.carts.Checkout(ctx, sessionID, func(snapshot cart.Snapshot) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			order, err := s.createOrder(tx, snapshot, buyer.ID, actor.UserID, req)
			if err != nil {
				return err
			}

			ref := inventory.Reference{Type: "order", ID: order.ID, UserID: actor.UserID}
			raised, err := s.stock.DeductForOrder(tx, ref, order.StockLines())
			if err != nil {
				return err
			}

			created, alerts = order, raised
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.stock.PublishAlerts(alerts)

	if buyer.Email != "" {
		payload := queue.InvoiceEmailPayload{OrderID: created.ID, Email: buyer.Email}
		if err := s.invoices.EnqueueInvoiceEmail(payload); err != nil {
			s.logger.WithError(err).WithField("order_id", created.ID).Warn("Failed to enqueue invoice email")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     created.ID,
		"order_number": created.OrderNumber,
		"customer_id":  buyer.ID,
		"user_id":      actor.UserID,
		"total":        created.Total.String(),
	}).Info("Order created")

	return s.loadOrder(s.db.WithContext(ctx), created.ID)
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(actor Actor, req *OrderListRequest) (*OrderResponse, error) {
	var orders []Order
	var total int64

	page, limit := pagination.Normalize(req.Page, req.Limit)

	query := s.db.Model(&Order{}).Scopes(visibleTo(actor))

	status, ok := ParseStatusFilter(req.Status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if req.CustomerID > 0 {
		query = query.Where("customer_id = ?", req.CustomerID)
	}

	if req.RepresentativeID > 0 {
		query = query.Where("representative_id = ?", req.RepresentativeID)
	}

	if search := strings.TrimSpace(req.Search); search != "" {
		query = query.Where("UPPER(order_number) LIKE ?", "%"+strings.ToUpper(search)+"%")
	}

	if req.DateFrom != "" {
		from, err := time.Parse(time.DateOnly, req.DateFrom)
		if err != nil {
			return nil, ErrInvalidDateFilter
		}
		query = query.Where("created_at >= ?", from)
	}

	if req.DateTo != "" {
		to, err := time.Parse(time.DateOnly, req.DateTo)
		if err != nil {
			return nil, ErrInvalidDateFilter
		}
		query = query.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	err := query.
		Preload("Items").
		Order(s.buildOrderClause(req.SortBy, req.SortOrder)).
		Scopes(pagination.Paginate(page, limit)).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &OrderResponse{
		Orders:     orders,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(actor Actor, id uint) (*Order, error) {
	order, err := s.loadOrder(s.db, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(actor Actor, orderNumber string) (*Order, error) {
	var found Order
	if err := s.db.Select("id").Where("order_number = ?", orderNumber).First(&found).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return s.GetOrder(actor, found.ID)
}

// UpdateOrderStatus moves an order along its lifecycle. Moving to cancelled goes
// through CancelOrder so stock is restored.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor Actor, orderID uint, req *UpdateStatusRequest) (*Order, error) {
	if !req.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if req.Status == OrderStatusCancelled {
		return s.CancelOrder(ctx, actor, orderID, &CancelRequest{Reason: req.Comment})
	}
	if actor.Representative {
		return nil, ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		return s.applyStatus(tx, actor, order, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   req.Status,
		"user_id":  actor.UserID,
	}).Info("Order status updated")

	return s.loadOrder(s.db.WithContext(ctx), orderID)
}

// UpdatePaymentStatus records payment or refund of an order
func (s *Service) UpdatePaymentStatus(ctx context.Context, actor Actor, orderID uint, req *UpdatePaymentRequest) (*Order, error) {
	if !req.PaymentStatus.IsValid() {
		return nil, ErrInvalidPaymentStatus
	}
	if actor.Representative {
		return nil, ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.loadOrder(tx, orderID)
		if err != nil {
			return err
		}

		if !canChangePayment(order.PaymentStatus, req.PaymentStatus) {
			return fmt.Errorf("%w from %s to %s", ErrInvalidPaymentChange, order.PaymentStatus, req.PaymentStatus)
		}

		result := tx.Model(&Order{}).
			Where("id = ? AND payment_status = ?", orderID, order.PaymentStatus).
			Update("payment_status", req.PaymentStatus)
		if result.Error != nil {
			return fmt.Errorf("failed to update payment status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: payment status changed concurrently", ErrInvalidPaymentChange)
		}

		comment := fmt.Sprintf("Payment marked %s", req.PaymentStatus)
		if req.Comment != "" {
			comment += ": " + req.Comment
		}
		return addHistory(tx, orderID, order.Status, comment, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	return s.loadOrder(s.db.WithContext(ctx), orderID)
}

// CancelOrder cancels an order and puts its items back into stock. Representatives
// may only cancel their own orders while they are still pending.
func (s *Service) CancelOrder(ctx context.Context, actor Actor, orderID uint, req *CancelRequest) (*Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		return s.cancel(tx, actor, order, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  actor.UserID,
	}).Info("Order cancelled")

	return s.loadOrder(s.db.WithContext(ctx), orderID)
}

// StatusOptions returns the status filter dropdown with the number of orders the
// actor can see in each status
func (s *Service) StatusOptions(actor Actor) ([]StatusOption, error) {
	counts, err := s.CountByStatus(actor)
	if err != nil {
		return nil, err
	}
	return buildStatusOptions(counts), nil
}

// CountByStatus counts the orders visible to the actor per status
func (s *Service) CountByStatus(actor Actor) (map[OrderStatus]int64, error) {
	var rows []struct {
		Status OrderStatus
		Count  int64
	}
	err := s.db.Model(&Order{}).
		Scopes(visibleTo(actor)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts := make(map[OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Revenue sums the totals of non-cancelled orders visible to the actor
func (s *Service) Revenue(actor Actor) (money.Money, error) {
	var result struct {
		Revenue money.Money
	}
	err := s.db.Model(&Order{}).
		Scopes(visibleTo(actor)).
		Where("status <> ?", OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Scan(&result).Error
	if err != nil {
		return money.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return result.Revenue, nil
}

// RecentOrders returns the latest orders visible to the actor
func (s *Service) RecentOrders(actor Actor, limit int) ([]Order, error) {
	var orders []Order
	err := s.db.Scopes(visibleTo(actor)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve recent orders: %w", err)
	}
	return orders, nil
}

// Private helper methods

func (s *Service) createOrder(tx *gorm.DB, snapshot cart.Snapshot, customerID, userID uint, req *CheckoutRequest) (*Order, error) {
	subtotal := snapshot.Total
	if req.Discount.GreaterThan(subtotal.Decimal) {
		return nil, ErrInvalidDiscount
	}
	taxable := subtotal.Sub(req.Discount)
	tax := taxable.MulRate(s.config.Order.TaxRate)

	packSizes, err := loadPackSizes(tx, snapshot)
	if err != nil {
		return nil, err
	}

	order := Order{
		// replaced once the ID is known
		OrderNumber:      "PENDING-" + uuid.NewString(),
		CustomerID:       customerID,
		RepresentativeID: userID,
		Status:           OrderStatusPending,
		PaymentStatus:    PaymentStatusUnpaid,
		Subtotal:         subtotal,
		Tax:              tax,
		Discount:         req.Discount,
		Total:            taxable.Add(tax),
		Currency:         s.config.Order.Currency,
		Notes:            strings.TrimSpace(req.Notes),
	}

	if err := tx.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.OrderNumber = order.GenerateOrderNumber()
	if err := tx.Model(&Order{}).Where("id = ?", order.ID).Update("order_number", order.OrderNumber).Error; err != nil {
		return nil, fmt.Errorf("failed to update order number: %w", err)
	}

	items := make([]OrderItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		pack := packSizes[line.PackSizeID]
		items = append(items, OrderItem{
			OrderID:    order.ID,
			ProductID:  line.ProductID,
			PackSizeID: line.PackSizeID,
			SKU:        pack.SKU,
			Name:       line.ProductName,
			PackSize:   line.PackSize,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal,
		})
	}
	if err := tx.Create(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}
	order.Items = items

	order.AddStatusHistory(OrderStatusPending, "Order created", userID)
	if err := tx.Create(&order.StatusHistory).Error; err != nil {
		return nil, fmt.Errorf("failed to create status history: %w", err)
	}

	return &order, nil
}

// applyStatus moves a loaded order to req.Status. The update only matches while
// the order still has the status it was loaded with.
func (s *Service) applyStatus(tx *gorm.DB, actor Actor, order *Order, req *UpdateStatusRequest) error {
	if !CanTransition(order.Status, req.Status) {
		return fmt.Errorf("%w from %s to %s", ErrInvalidStatusTransition, order.Status, req.Status)
	}

	updates := map[string]interface{}{
		"status": req.Status,
	}

	// Set timestamps based on status
	now := time.Now().UTC()
	switch req.Status {
	case OrderStatusProcessing:
		updates["processed_at"] = now
	case OrderStatusShipped:
		updates["shipped_at"] = now
	case OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	result := tx.Model(&Order{}).Where("id = ? AND status = ?", order.ID, order.Status).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: status changed from %s concurrently", ErrInvalidStatusTransition, order.Status)
	}

	return addHistory(tx, order.ID, req.Status, req.Comment, actor.UserID)
}

// cancel marks a loaded order cancelled and restores its stock. Stock is only
// restored by the request whose status update matched, so an order is never
// restocked twice.
func (s *Service) cancel(tx *gorm.DB, actor Actor, order *Order, req *CancelRequest) error {
	if !canView(actor, order) {
		return ErrOrderNotFound
	}
	if actor.Representative && order.Status != OrderStatusPending {
		return ErrForbidden
	}
	if !order.CanBeCancelled() {
		return fmt.Errorf("%w: %s", ErrCannotCancel, order.Status)
	}

	result := tx.Model(&Order{}).Where("id = ? AND status = ?", order.ID, order.Status).Updates(map[string]interface{}{
		"status":       OrderStatusCancelled,
		"cancelled_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: status changed from %s concurrently", ErrCannotCancel, order.Status)
	}

	ref := inventory.Reference{Type: "order", ID: order.ID, UserID: actor.UserID}
	if err := s.stock.RestoreForOrder(tx, ref, order.StockLines()); err != nil {
		return fmt.Errorf("failed to restore inventory: %w", err)
	}

	comment := "Order cancelled"
	if req != nil && req.Reason != "" {
		comment = fmt.Sprintf("Order cancelled: %s", req.Reason)
	}
	return addHistory(tx, order.ID, OrderStatusCancelled, comment, actor.UserID)
}

// loadPackSizes fetches the pack sizes referenced by the cart; any that have been
// removed since they were added make the cart unavailable for checkout
func loadPackSizes(tx *gorm.DB, snapshot cart.Snapshot) (map[uint]product.PackSize, error) {
	ids := make([]uint, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		ids = append(ids, line.PackSizeID)
	}

	var packSizes []product.PackSize
	if err := tx.Where("id IN ?", ids).Find(&packSizes).Error; err != nil {
		return nil, fmt.Errorf("failed to load pack sizes: %w", err)
	}

	byID := make(map[uint]product.PackSize, len(packSizes))
	for _, pack := range packSizes {
		byID[pack.ID] = pack
	}
	for _, line := range snapshot.Items {
		if _, ok := byID[line.PackSizeID]; !ok {
			return nil, fmt.Errorf("%w: %s %s", cart.ErrProductUnavailable, line.ProductName, line.PackSize)
		}
	}
	return byID, nil
}

func (s *Service) loadOrder(db *gorm.DB, id uint) (*Order, error) {
	var order Order
	result := db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Where("id = ?", id).
		First(&order)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &order, nil
}

func addHistory(tx *gorm.DB, orderID uint, status OrderStatus, comment string, userID uint) error {
	history := OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}
	return nil
}

func visibleTo(actor Actor) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.Representative {
			return db.Where("representative_id = ?", actor.UserID)
		}
		return db
	}
}

func canView(actor Actor, order *Order) bool {
	return !actor.Representative || order.RepresentativeID == actor.UserID
}

func canChangePayment(from, to PaymentStatus) bool {
	switch from {
	case PaymentStatusUnpaid:
		return to == PaymentStatusPaid
	case PaymentStatusPaid:
		return to == PaymentStatusRefunded || to == PaymentStatusUnpaid
	}
	return false
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total":        true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}
