package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimesKeepsCents(t *testing.T) {
	price := MustFromString("24.99")

	assert.Equal(t, "49.98", price.Times(2).String())
	assert.Equal(t, "124.95", price.Times(5).String())
	assert.Equal(t, "0.00", price.Times(0).String())
}

func TestAddSub(t *testing.T) {
	a := MustFromString("124.95")
	b := MustFromString("32")

	assert.Equal(t, "156.95", a.Add(b).String())
	assert.Equal(t, "92.95", a.Sub(b).String())
}

func TestMulRateRounds(t *testing.T) {
	subtotal := MustFromString("10.05")
	tax := subtotal.MulRate(decimal.RequireFromString("0.075"))

	assert.Equal(t, "0.75", tax.String())
}

func TestJSONRoundTrip(t *testing.T) {
	body, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: MustFromString("5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"5.00"}`, string(body))

	var fromNumber struct {
		Price Money `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":12.345}`), &fromNumber))
	assert.Equal(t, "12.35", fromNumber.Price.String())

	var fromString struct {
		Price Money `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":"7.1"}`), &fromString))
	assert.Equal(t, "7.10", fromString.Price.String())
}

func TestScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("19.999"))
	assert.Equal(t, "20.00", m.String())

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "20", v)
}
