// internal/domain/cart/cart.go
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/your-org/hardware-admin/internal/pkg/money"
)

// Cart is the ordered collection of lines owned by a single session.
//
// Invariants held after every operation:
//   - no two lines share the same (product, pack size) pair
//   - every line has a quantity of at least 1
//   - Count() is the sum of quantities and Total() the sum of line totals
//
// A Cart is not safe for concurrent use; its owner serializes access.
type Cart struct {
	lines []Line
	count int
	total money.Money

	newID func() string
	now   func() time.Time
}

// Option configures a Cart
type Option func(*Cart)

// WithIDGenerator overrides how line ids are generated
func WithIDGenerator(fn func() string) Option {
	return func(c *Cart) {
		c.newID = fn
	}
}

// WithClock overrides the clock used to stamp new lines
func WithClock(fn func() time.Time) Option {
	return func(c *Cart) {
		c.now = fn
	}
}

// New creates an empty cart
func New(opts ...Option) *Cart {
	c := &Cart{
		total: money.Zero,
		newID: func() string { return uuid.New().String() },
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore rebuilds a cart from previously stored lines. Lines with a non-positive
// quantity are dropped and duplicate (product, pack size) pairs are merged into the
// first occurrence, so a restored cart always satisfies the invariants.
func Restore(lines []Line, opts ...Option) *Cart {
	c := New(opts...)
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		if i := c.indexByKey(line.ProductID, line.PackSize); i >= 0 {
			c.lines[i] = c.lines[i].withQuantity(c.lines[i].Quantity + line.Quantity)
			continue
		}
		c.lines = append(c.lines, line)
	}
	c.recompute()
	return c
}

// Add merges the candidate into the line with the same product and pack size, or
// appends a new line at the end. The merged line keeps its position and its
// original unit price.
func (c *Cart) Add(candidate Candidate) Line {
	defer c.recompute()

	if i := c.indexByKey(candidate.ProductID, candidate.PackSize); i >= 0 {
		c.lines[i] = c.lines[i].withQuantity(c.lines[i].Quantity + candidate.Quantity)
		return c.lines[i]
	}

	line := Line{
		ID:          c.newID(),
		ProductID:   candidate.ProductID,
		PackSizeID:  candidate.PackSizeID,
		ProductName: candidate.ProductName,
		PackSize:    candidate.PackSize,
		Image:       candidate.Image,
		Quantity:    candidate.Quantity,
		UnitPrice:   candidate.UnitPrice,
		AddedAt:     c.now(),
	}
	c.lines = append(c.lines, line)
	return line
}

// Remove deletes the line with the given id. Unknown ids are a no-op.
func (c *Cart) Remove(lineID string) bool {
	i := c.indexByID(lineID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.recompute()
	return true
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or below removes
// the line. Unknown ids are a no-op.
func (c *Cart) UpdateQuantity(lineID string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(lineID)
	}

	i := c.indexByID(lineID)
	if i < 0 {
		return false
	}
	c.lines[i] = c.lines[i].withQuantity(quantity)
	c.recompute()
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
	c.recompute()
}

// Find returns the line with the given id
func (c *Cart) Find(lineID string) (Line, bool) {
	if i := c.indexByID(lineID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// FindByKey returns the line for a product and pack size
func (c *Cart) FindByKey(productID uint, packSize string) (Line, bool) {
	if i := c.indexByKey(productID, packSize); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines
func (c *Cart) Len() int { return len(c.lines) }

// Count returns the sum of all line quantities
func (c *Cart) Count() int { return c.count }

// Total returns the sum of all line totals
func (c *Cart) Total() money.Money { return c.total }

// Snapshot returns a read-only copy of the cart
func (c *Cart) Snapshot() Snapshot {
	items := make([]LineView, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, LineView{Line: line, LineTotal: line.LineTotal()})
	}
	return Snapshot{
		Items: items,
		Count: c.count,
		Total: c.total,
	}
}

// recompute derives both aggregates from the lines from scratch
func (c *Cart) recompute() {
	count := 0
	total := money.Zero
	for _, line := range c.lines {
		count += line.Quantity
		total = total.Add(line.LineTotal())
	}
	c.count = count
	c.total = total
}

func (c *Cart) indexByID(lineID string) int {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) indexByKey(productID uint, packSize string) int {
	for i := range c.lines {
		if c.lines[i].matches(productID, packSize) {
			return i
		}
	}
	return -1
}
