// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/pkg/money"
)

// CatalogItem is what the catalog knows about one pack size of a product
type CatalogItem struct {
	ProductID   uint
	PackSizeID  uint
	ProductName string
	PackSize    string
	Image       string
	UnitPrice   money.Money
}

// Catalog supplies add candidates. Implementations return ErrProductUnavailable
// for unknown or inactive products and pack sizes.
type Catalog interface {
	LookupPackSize(ctx context.Context, productID uint, packSize string) (*CatalogItem, error)
}

// StockChecker reports units available for sale of a pack size
type StockChecker interface {
	Available(ctx context.Context, packSizeID uint) (int, error)
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	PackSize  string `json:"pack_size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// UpdateItemRequest represents update cart item request. Zero or negative removes
// the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// Issue is a problem found while validating a cart against the catalog and stock
type Issue struct {
	LineID  string `json:"line_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	IssueUnavailable       = "unavailable"
	IssuePriceChanged      = "price_changed"
	IssueInsufficientStock = "insufficient_stock"
)

// ValidationResult is the outcome of Validate
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []Issue  `json:"issues"`
	Cart   Snapshot `json:"cart"`
}

// Service owns the per-session carts. Each request loads the session cart,
// applies one aggregator operation and saves it, holding the session lock for the
// whole sequence.
type Service struct {
	store   Store
	catalog Catalog
	stock   StockChecker
	policy  QuantityPolicy
	locks   *sessionLocks
	logger  *logrus.Logger

	// carts already turned into orders whose clear did not reach the store,
	// keyed by session and holding the fingerprint of the submitted lines
	submittedMu sync.Mutex
	submitted   map[string]string
}

// NewService creates a new cart service
func NewService(store Store, catalog Catalog, stock StockChecker, policy QuantityPolicy, logger *logrus.Logger) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		stock:     stock,
		policy:    policy,
		locks:     newSessionLocks(),
		logger:    logger,
		submitted: make(map[string]string),
	}
}

// GetCart returns the session cart
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Snapshot, error) {
	var snapshot Snapshot
	err := s.withCart(ctx, sessionID, false, func(c *Cart) error {
		snapshot = c.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// AddItem looks the pack size up in the catalog and adds it to the session cart.
// The unit price is fixed here and never refreshed afterwards.
func (s *Service) AddItem(ctx context.Context, sessionID string, req *AddItemRequest) (*Snapshot, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	packSize := strings.TrimSpace(req.PackSize)

	item, err := s.catalog.LookupPackSize(ctx, req.ProductID, packSize)
	if err != nil {
		return nil, err
	}
	if item.UnitPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}

	available, err := s.stock.Available(ctx, item.PackSizeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check stock: %w", err)
	}

	var snapshot Snapshot
	err = s.withCart(ctx, sessionID, true, func(c *Cart) error {
		existing := 0
		if line, ok := c.FindByKey(item.ProductID, item.PackSize); ok {
			existing = line.Quantity
		}

		allowed, err := s.policy.Resolve(existing+req.Quantity, available)
		if err != nil {
			return err
		}
		if allowed <= existing {
			// clamped to what the cart already holds
			snapshot = c.Snapshot()
			return nil
		}

		c.Add(Candidate{
			ProductID:   item.ProductID,
			PackSizeID:  item.PackSizeID,
			ProductName: item.ProductName,
			PackSize:    item.PackSize,
			Quantity:    allowed - existing,
			UnitPrice:   item.UnitPrice,
			Image:       item.Image,
		})
		snapshot = c.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// UpdateItem sets the quantity of a line. Unknown lines are left alone.
func (s *Service) UpdateItem(ctx context.Context, sessionID, lineID string, req *UpdateItemRequest) (*Snapshot, error) {
	if req.Quantity == nil {
		return nil, ErrInvalidQuantity
	}
	quantity := *req.Quantity

	var snapshot Snapshot
	err := s.withCart(ctx, sessionID, true, func(c *Cart) error {
		line, ok := c.Find(lineID)
		if ok && quantity > 0 {
			available, err := s.stock.Available(ctx, line.PackSizeID)
			if err != nil {
				return fmt.Errorf("failed to check stock: %w", err)
			}
			if quantity, err = s.policy.Resolve(quantity, available); err != nil {
				return err
			}
		}

		c.UpdateQuantity(lineID, quantity)
		snapshot = c.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// RemoveItem removes a line from the session cart
func (s *Service) RemoveItem(ctx context.Context, sessionID, lineID string) (*Snapshot, error) {
	var snapshot Snapshot
	err := s.withCart(ctx, sessionID, true, func(c *Cart) error {
		c.Remove(lineID)
		snapshot = c.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ClearCart removes all items from the session cart
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.forgetSubmitted(sessionID)
	return nil
}

// Checkout hands a snapshot of a non-empty cart to submit and clears the cart when
// submit succeeds. The session stays locked until then, so no other request can
// change the cart between reading and clearing it. Once submit has succeeded the
// checkout stands: a failed clear is logged and the submitted lines are ignored on
// later loads so they cannot be submitted twice.
func (s *Service) Checkout(ctx context.Context, sessionID string, submit func(Snapshot) error) error {
	return s.withCart(ctx, sessionID, false, func(c *Cart) error {
		snapshot := c.Snapshot()
		if snapshot.IsEmpty() {
			return ErrEmptyCart
		}
		if err := submit(snapshot); err != nil {
			return err
		}

		if err := s.store.Save(ctx, sessionID, nil); err != nil {
			s.markSubmitted(sessionID, c.Lines())
			s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to clear cart after checkout")
			return nil
		}
		s.forgetSubmitted(sessionID)
		return nil
	})
}

// Validate re-checks every line against the current catalog and stock without
// changing the cart
func (s *Service) Validate(ctx context.Context, sessionID string) (*ValidationResult, error) {
	snapshot, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	issues := []Issue{}
	for _, item := range snapshot.Items {
		current, err := s.catalog.LookupPackSize(ctx, item.ProductID, item.PackSize)
		if errors.Is(err, ErrProductUnavailable) {
			issues = append(issues, Issue{
				LineID:  item.ID,
				Code:    IssueUnavailable,
				Message: fmt.Sprintf("%s (%s) is no longer available", item.ProductName, item.PackSize),
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		if !current.UnitPrice.Equal(item.UnitPrice) {
			issues = append(issues, Issue{
				LineID: item.ID,
				Code:   IssuePriceChanged,
				Message: fmt.Sprintf("price of %s (%s) changed from %s to %s",
					item.ProductName, item.PackSize, item.UnitPrice, current.UnitPrice),
			})
		}

		available, err := s.stock.Available(ctx, item.PackSizeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check stock: %w", err)
		}
		if available < item.Quantity {
			issues = append(issues, Issue{
				LineID: item.ID,
				Code:   IssueInsufficientStock,
				Message: fmt.Sprintf("%s (%s) has insufficient stock. Available: %d, Requested: %d",
					item.ProductName, item.PackSize, max(available, 0), item.Quantity),
			})
		}
	}

	return &ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
		Cart:   *snapshot,
	}, nil
}

// withCart loads the session cart under the session lock, runs fn and, when write
// is set and fn succeeds, saves the result
func (s *Service) withCart(ctx context.Context, sessionID string, write bool, fn func(c *Cart) error) error {
	if sessionID == "" {
		return ErrSessionRequired
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	if s.wasSubmitted(sessionID, lines) {
		lines = nil
	}

	c := Restore(lines)
	if err := fn(c); err != nil {
		return err
	}
	if !write {
		return nil
	}

	if err := s.store.Save(ctx, sessionID, c.Lines()); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to save cart")
		return err
	}
	s.forgetSubmitted(sessionID)
	return nil
}

func (s *Service) markSubmitted(sessionID string, lines []Line) {
	s.submittedMu.Lock()
	defer s.submittedMu.Unlock()
	s.submitted[sessionID] = fingerprint(lines)
}

func (s *Service) forgetSubmitted(sessionID string) {
	s.submittedMu.Lock()
	defer s.submittedMu.Unlock()
	delete(s.submitted, sessionID)
}

func (s *Service) wasSubmitted(sessionID string, lines []Line) bool {
	if len(lines) == 0 {
		return false
	}
	s.submittedMu.Lock()
	defer s.submittedMu.Unlock()
	mark, ok := s.submitted[sessionID]
	return ok && mark == fingerprint(lines)
}

func fingerprint(lines []Line) string {
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "%s:%d:%s;", line.ID, line.Quantity, line.UnitPrice)
	}
	return b.String()
}

// sessionLocks is a set of per-session mutexes that are dropped once unused
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &sessionLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
