package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/money"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testCatalog map[string]*cart.CatalogItem

func (c testCatalog) LookupPackSize(_ context.Context, productID uint, packSize string) (*cart.CatalogItem, error) {
	for _, item := range c {
		if item.ProductID == productID && item.PackSize == packSize {
			copied := *item
			return &copied, nil
		}
	}
	return nil, cart.ErrProductUnavailable
}

type testStock map[uint]int

func (s testStock) Available(_ context.Context, packSizeID uint) (int, error) {
	return s[packSizeID], nil
}

type cartResponse struct {
	Data  cart.Snapshot `json:"data"`
	Error string        `json:"error"`
}

func setupCartRouter(t *testing.T) *gin.Engine {
	t.Helper()
	catalog := testCatalog{
		"filler": {ProductID: 1, PackSizeID: 11, ProductName: "Wood Filler", PackSize: "500g", UnitPrice: money.MustFromString("24.99")},
		"hammer": {ProductID: 2, PackSizeID: 21, ProductName: "Claw Hammer", PackSize: "each", UnitPrice: money.MustFromString("32.00")},
	}
	policy := cart.NewQuantityPolicy(config.CartConfig{StockPolicy: config.StockPolicyReject, MaxLineQuantity: 50})
	svc := cart.NewService(cart.NewMemoryStore(), catalog, testStock{11: 10, 21: 1}, policy, logger.Discard())
	h := NewCartHandler(svc, logger.Discard())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if session := c.GetHeader("X-Test-Session"); session != "" {
			c.Set(middleware.ContextSessionID, session)
		}
		c.Next()
	})
	router.GET("/cart", h.GetCart)
	router.DELETE("/cart", h.ClearCart)
	router.GET("/cart/count", h.GetCartCount)
	router.POST("/cart/validate", h.ValidateCart)
	router.POST("/cart/items", h.AddToCart)
	router.PUT("/cart/items/:id", h.UpdateCartItem)
	router.DELETE("/cart/items/:id", h.RemoveFromCart)
	return router
}

func doCart(t *testing.T, router http.Handler, method, path, session, body string) (int, cartResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Test-Session", session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestCartHandlerFlow(t *testing.T) {
	router := setupCartRouter(t)

	code, resp := doCart(t, router, http.MethodPost, "/cart/items", "s1", `{"product_id":1,"pack_size":"500g","quantity":2}`)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "49.98", resp.Data.Total.String())
	lineID := resp.Data.Items[0].ID

	code, resp = doCart(t, router, http.MethodPost, "/cart/items", "s1", `{"product_id":1,"pack_size":"500g","quantity":1}`)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 3, resp.Data.Count)

	code, resp = doCart(t, router, http.MethodPut, "/cart/items/"+lineID, "s1", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "124.95", resp.Data.Total.String())

	// Other sessions keep their own cart
	code, resp = doCart(t, router, http.MethodGet, "/cart", "s2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data.Items)

	code, resp = doCart(t, router, http.MethodDelete, "/cart/items/"+lineID, "s1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, "0.00", resp.Data.Total.String())
}

func TestCartHandlerErrors(t *testing.T) {
	router := setupCartRouter(t)

	code, _ := doCart(t, router, http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := doCart(t, router, http.MethodPost, "/cart/items", "s1", `{"product_id":9,"pack_size":"1kg","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, cart.ErrProductUnavailable.Error(), resp.Error)

	code, _ = doCart(t, router, http.MethodPost, "/cart/items", "s1", `{"product_id":2,"pack_size":"each","quantity":3}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = doCart(t, router, http.MethodPost, "/cart/items", "s1", `{"pack_size":"each"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCartHandlerClearAndValidate(t *testing.T) {
	router := setupCartRouter(t)

	code, _ := doCart(t, router, http.MethodPost, "/cart/items", "s1", `{"product_id":2,"pack_size":"each","quantity":1}`)
	require.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodPost, "/cart/validate", nil)
	req.Header.Set("X-Test-Session", "s1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var validation struct {
		Data cart.ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &validation))
	assert.True(t, validation.Data.Valid)

	req = httptest.NewRequest(http.MethodGet, "/cart/count", nil)
	req.Header.Set("X-Test-Session", "s1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1,"total":"32.00"}`, extractData(t, w.Body.Bytes()))

	code, _ = doCart(t, router, http.MethodDelete, "/cart", "s1", "")
	require.Equal(t, http.StatusOK, code)

	code, resp := doCart(t, router, http.MethodGet, "/cart", "s1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data.Items)
}

func extractData(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return string(envelope.Data)
}
