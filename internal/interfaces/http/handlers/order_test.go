package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/domain/customer"
	"github.com/your-org/hardware-admin/internal/domain/inventory"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"github.com/your-org/hardware-admin/internal/pkg/testdb"
	"github.com/your-org/hardware-admin/internal/queue"
)

type orderTestEnv struct {
	router *gin.Engine
	carts  *cart.Service
	stock  *inventory.Service
	buyer  *customer.Customer
	filler product.PackSize
}

func setupOrderRouter(t *testing.T) *orderTestEnv {
	t.Helper()
	db := testdb.Open(t,
		&product.PackSize{}, &customer.Customer{},
		&inventory.StockItem{}, &inventory.StockMovement{}, &inventory.StockAlert{},
		&order.Order{}, &order.OrderItem{}, &order.OrderStatusHistory{},
	)
	ctx := context.Background()
	cfg := &config.Config{
		Cart:  config.CartConfig{StockPolicy: config.StockPolicyReject, MaxLineQuantity: 50},
		Order: config.OrderConfig{Currency: "USD", TaxRate: decimal.RequireFromString("0.10")},
	}

	filler := product.PackSize{ProductID: 1, Label: "500g", SKU: "WF-100-500", Price: money.MustFromString("24.99"), IsActive: true}
	require.NoError(t, db.Create(&filler).Error)

	jobs := queue.NewClient(cfg)
	stock := inventory.NewService(db, jobs, logger.Discard())
	_, err := stock.Receive(ctx, 1, &inventory.ReceiveRequest{PackSizeID: filler.ID, Quantity: 10})
	require.NoError(t, err)

	customers := customer.NewService(db)
	buyer, err := customers.Create(1, &customer.CreateRequest{Name: "Dana Price", Company: "Acme Builders"})
	require.NoError(t, err)

	catalog := testCatalog{
		"filler": {ProductID: 1, PackSizeID: filler.ID, ProductName: "Wood Filler", PackSize: "500g", UnitPrice: filler.Price},
	}
	carts := cart.NewService(cart.NewMemoryStore(), catalog, stock, cart.NewQuantityPolicy(cfg.Cart), logger.Discard())
	orders := order.NewService(db, cfg, carts, stock, customers, jobs, logger.Discard())
	h := NewOrderHandler(orders, logger.Discard())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if session := c.GetHeader("X-Test-Session"); session != "" {
			c.Set(middleware.ContextSessionID, session)
		}
		if id, err := strconv.ParseUint(c.GetHeader("X-Test-User"), 10, 64); err == nil {
			c.Set(middleware.ContextUserID, uint(id))
		}
		c.Set(middleware.ContextUserRole, c.GetHeader("X-Test-Role"))
		c.Next()
	})
	router.POST("/orders", h.CreateOrder)
	router.GET("/orders", h.GetOrders)
	router.GET("/orders/statuses", h.GetStatusOptions)

	return &orderTestEnv{router: router, carts: carts, stock: stock, buyer: buyer, filler: filler}
}

type testCaller struct {
	user    string
	role    string
	session string
}

var (
	adminCaller = testCaller{user: "1", role: "admin", session: "admin-sess"}
	repCaller   = testCaller{user: "7", role: "representative", session: "rep-sess"}
	otherRep    = testCaller{user: "8", role: "representative", session: "other-sess"}
)

func doOrder(t *testing.T, router http.Handler, method, path string, caller testCaller, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", caller.user)
	req.Header.Set("X-Test-Role", caller.role)
	if caller.session != "" {
		req.Header.Set("X-Test-Session", caller.session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestOrderHandlerCreateOrder(t *testing.T) {
	env := setupOrderRouter(t)
	_, err := env.carts.AddItem(context.Background(), repCaller.session, &cart.AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 2})
	require.NoError(t, err)

	body := `{"customer_id":` + strconv.FormatUint(uint64(env.buyer.ID), 10) + `}`
	code, resp := doOrder(t, env.router, http.MethodPost, "/orders", repCaller, body)
	require.Equal(t, http.StatusCreated, code, string(resp["error"]))

	var created order.Order
	require.NoError(t, json.Unmarshal(resp["data"], &created))
	assert.Regexp(t, `^ORD-\d{8}-\d{5}$`, created.OrderNumber)
	assert.Equal(t, uint(7), created.RepresentativeID)
	assert.Equal(t, "49.98", created.Subtotal.String())
	assert.Equal(t, "54.98", created.Total.String())
	require.Len(t, created.Items, 1)

	available, err := env.stock.Available(context.Background(), env.filler.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, available)

	// the cart was cleared by the first order
	code, resp = doOrder(t, env.router, http.MethodPost, "/orders", repCaller, body)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.JSONEq(t, `"`+cart.ErrEmptyCart.Error()+`"`, string(resp["error"]))
}

func TestOrderHandlerCreateOrderErrors(t *testing.T) {
	env := setupOrderRouter(t)
	_, err := env.carts.AddItem(context.Background(), repCaller.session, &cart.AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 1})
	require.NoError(t, err)

	noSession := repCaller
	noSession.session = ""
	code, _ := doOrder(t, env.router, http.MethodPost, "/orders", noSession, `{"customer_id":1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := doOrder(t, env.router, http.MethodPost, "/orders", repCaller, `{"notes":"no customer"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `"Invalid request data"`, string(resp["error"]))

	code, _ = doOrder(t, env.router, http.MethodPost, "/orders", repCaller, `{"customer_id":999}`)
	assert.Equal(t, http.StatusNotFound, code)

	snapshot, err := env.carts.GetCart(context.Background(), repCaller.session)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Count, "failed orders keep the cart")
}

func TestOrderHandlerStatusOptions(t *testing.T) {
	env := setupOrderRouter(t)
	_, err := env.carts.AddItem(context.Background(), repCaller.session, &cart.AddItemRequest{ProductID: 1, PackSize: "500g", Quantity: 1})
	require.NoError(t, err)

	body := `{"customer_id":` + strconv.FormatUint(uint64(env.buyer.ID), 10) + `}`
	code, _ := doOrder(t, env.router, http.MethodPost, "/orders", repCaller, body)
	require.Equal(t, http.StatusCreated, code)

	var options []order.StatusOption

	code, resp := doOrder(t, env.router, http.MethodGet, "/orders/statuses", adminCaller, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp["data"], &options))
	require.Len(t, options, len(order.Statuses)+1)
	assert.Equal(t, order.StatusOption{Value: "all", Label: "All Orders", Count: 1}, options[0])
	assert.Equal(t, order.StatusOption{Value: "pending", Label: "Pending", Count: 1}, options[1])

	code, resp = doOrder(t, env.router, http.MethodGet, "/orders/statuses", otherRep, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp["data"], &options))
	assert.Equal(t, int64(0), options[0].Count, "representatives only count their own orders")

	code, resp = doOrder(t, env.router, http.MethodGet, "/orders?status=bogus", adminCaller, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, resp["error"])
}
