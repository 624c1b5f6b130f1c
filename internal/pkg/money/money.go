// internal/pkg/money/money.go
package money

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount kept at 2 decimal places
type Money struct {
	decimal.Decimal
}

// Zero is the zero amount
var Zero = Money{Decimal: decimal.Zero}

// New creates Money from a decimal, rounding to cents
func New(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// FromString parses an amount such as "24.99"
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	return New(d), nil
}

// MustFromString is FromString for constants and tests
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	return New(m.Decimal.Add(other.Decimal))
}

// Sub returns m - other
func (m Money) Sub(other Money) Money {
	return New(m.Decimal.Sub(other.Decimal))
}

// Times returns m multiplied by an integer quantity
func (m Money) Times(quantity int) Money {
	return New(m.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
}

// MulRate returns m multiplied by a rate, e.g. a tax rate
func (m Money) MulRate(rate decimal.Decimal) Money {
	return New(m.Decimal.Mul(rate))
}

// Equal compares two amounts at cent precision
func (m Money) Equal(other Money) bool {
	return m.Decimal.Round(2).Equal(other.Decimal.Round(2))
}

// MarshalJSON always emits a 2-decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON accepts a string or a number
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

// Value is used when writing to the database
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan is used when reading from the database
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String returns the amount with 2 decimal places
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
