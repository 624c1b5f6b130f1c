package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRE", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StockPolicyReject, cfg.Cart.StockPolicy)
	assert.Equal(t, 2*time.Hour, cfg.Cart.SessionTTL, "cart session follows the access token lifetime")
	assert.True(t, cfg.Order.TaxRate.IsZero())
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CART_STOCK_POLICY", "CLAMP")
	t.Setenv("CART_SESSION_TTL", "45m")
	t.Setenv("ORDER_TAX_RATE", "0.15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StockPolicyClamp, cfg.Cart.StockPolicy)
	assert.Equal(t, 45*time.Minute, cfg.Cart.SessionTTL)
	assert.True(t, cfg.Order.TaxRate.Equal(decimal.RequireFromString("0.15")))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("CART_STOCK_POLICY", "ignore")
	_, err := Load()
	assert.ErrorContains(t, err, "CART_STOCK_POLICY")

	t.Setenv("CART_STOCK_POLICY", "reject")
	t.Setenv("JWT_SECRET", "short")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-secret-that-is-definitely-long-enough")
	t.Setenv("ORDER_TAX_RATE", "-0.1")
	_, err = Load()
	assert.ErrorContains(t, err, "ORDER_TAX_RATE")
}
