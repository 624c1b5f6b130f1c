// internal/domain/cart/policy.go
package cart

import (
	"fmt"

	"github.com/your-org/hardware-admin/internal/config"
)

// QuantityPolicy decides what happens when a requested line quantity is larger than
// the stock on hand or the per-line limit.
type QuantityPolicy struct {
	Mode            string // config.StockPolicyReject or config.StockPolicyClamp
	MaxLineQuantity int
}

// NewQuantityPolicy builds the policy from cart configuration
func NewQuantityPolicy(cfg config.CartConfig) QuantityPolicy {
	return QuantityPolicy{
		Mode:            cfg.StockPolicy,
		MaxLineQuantity: cfg.MaxLineQuantity,
	}
}

// Resolve returns the quantity a line may hold when requested units are asked for
// and available units are in stock.
func (p QuantityPolicy) Resolve(requested, available int) (int, error) {
	if requested < 1 {
		return 0, ErrInvalidQuantity
	}

	quantity := requested
	if p.MaxLineQuantity > 0 && quantity > p.MaxLineQuantity {
		if !p.clamps() {
			return 0, fmt.Errorf("%w: maximum %d", ErrQuantityLimit, p.MaxLineQuantity)
		}
		quantity = p.MaxLineQuantity
	}

	if quantity > available {
		if !p.clamps() || available < 1 {
			return 0, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, max(available, 0), requested)
		}
		quantity = available
	}

	return quantity, nil
}

func (p QuantityPolicy) clamps() bool {
	return p.Mode == config.StockPolicyClamp
}
