// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/interfaces/http/handlers"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
)

// Handlers groups every endpoint handler of the API
type Handlers struct {
	Auth      *handlers.AuthHandler
	Cart      *handlers.CartHandler
	Product   *handlers.ProductHandler
	Category  *handlers.CategoryHandler
	Supplier  *handlers.SupplierHandler
	Customer  *handlers.CustomerHandler
	Inventory *handlers.InventoryHandler
	Order     *handlers.OrderHandler
	Invoice   *handlers.InvoiceHandler
	UserAdmin *handlers.UserAdminHandler
	Analytics *handlers.AnalyticsHandler
	Authz     *handlers.AuthzHandler
}

// Guards are the middleware protecting authenticated routes
type Guards struct {
	Tokens   middleware.TokenValidator
	Enforcer middleware.Enforcer
	Logger   *logrus.Logger
}

// SetupRoutes registers all API routes. Login and refresh are public; every
// other route needs a valid access token and a policy allowing the role in.
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, guards Guards) {
	SetupPublicAuthRoutes(rg, h)

	protected := rg.Group("")
	protected.Use(middleware.AuthMiddleware(guards.Tokens))
	protected.Use(middleware.Authorize(guards.Enforcer, guards.Logger))

	SetupAuthRoutes(protected, h)
	SetupCartRoutes(protected, h)
	SetupCatalogRoutes(protected, h)
	SetupSupplierRoutes(protected, h)
	SetupCustomerRoutes(protected, h)
	SetupStockRoutes(protected, h)
	SetupOrderRoutes(protected, h)
	SetupAdminRoutes(protected, h)

	protected.GET("/dashboard", h.Analytics.GetDashboard)
}

// SetupPublicAuthRoutes sets up the routes used to obtain tokens
func SetupPublicAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

// SetupAuthRoutes sets up the signed-in user's own account routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	auth := rg.Group("/auth")
	{
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.GetCurrentUser)
		auth.PUT("/password", h.Auth.ChangePassword)
	}
}

// SetupCartRoutes sets up the session cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.GET("/count", h.Cart.GetCartCount)
		cart.POST("/validate", h.Cart.ValidateCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:id", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:id", h.Cart.RemoveFromCart)
	}
}

// SetupCatalogRoutes sets up product, pack size and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.POST("", h.Product.CreateProduct)
		products.GET("/:id", h.Product.GetProduct)
		products.PUT("/:id", h.Product.UpdateProduct)
		products.DELETE("/:id", h.Product.DeleteProduct)
		products.POST("/:id/pack-sizes", h.Product.AddPackSize)
		products.PUT("/:id/pack-sizes/:packSizeId", h.Product.UpdatePackSize)
		products.DELETE("/:id/pack-sizes/:packSizeId", h.Product.RemovePackSize)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.GetCategories)
		categories.POST("", h.Category.CreateCategory)
		categories.GET("/:id", h.Category.GetCategory)
		categories.PUT("/:id", h.Category.UpdateCategory)
		categories.DELETE("/:id", h.Category.DeleteCategory)
	}
}

// SetupSupplierRoutes sets up supplier routes
func SetupSupplierRoutes(rg *gin.RouterGroup, h *Handlers) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("", h.Supplier.GetSuppliers)
		suppliers.POST("", h.Supplier.CreateSupplier)
		suppliers.GET("/:id", h.Supplier.GetSupplier)
		suppliers.PUT("/:id", h.Supplier.UpdateSupplier)
		suppliers.DELETE("/:id", h.Supplier.DeleteSupplier)
	}
}

// SetupCustomerRoutes sets up customer routes
func SetupCustomerRoutes(rg *gin.RouterGroup, h *Handlers) {
	customers := rg.Group("/customers")
	{
		customers.GET("", h.Customer.GetCustomers)
		customers.POST("", h.Customer.CreateCustomer)
		customers.GET("/:id", h.Customer.GetCustomer)
		customers.PUT("/:id", h.Customer.UpdateCustomer)
		customers.PATCH("/:id/status", h.Customer.UpdateCustomerStatus)
	}
}

// SetupStockRoutes sets up inventory routes
func SetupStockRoutes(rg *gin.RouterGroup, h *Handlers) {
	stock := rg.Group("/stock")
	{
		stock.GET("", h.Inventory.GetStock)
		stock.GET("/low", h.Inventory.GetLowStock)
		stock.GET("/pack-sizes/:packSizeId", h.Inventory.GetPackSizeStock)
		stock.POST("/receive", h.Inventory.ReceiveStock)
		stock.POST("/adjust", h.Inventory.AdjustStock)
		stock.PUT("/items/:id", h.Inventory.UpdateStockItem)
		stock.GET("/items/:id/movements", h.Inventory.GetMovements)
		stock.GET("/alerts", h.Inventory.GetAlerts)
		stock.POST("/alerts/:id/resolve", h.Inventory.ResolveAlert)
	}
}

// SetupOrderRoutes sets up order and invoice routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.Order.GetOrders)
		orders.POST("", h.Order.CreateOrder)
		orders.GET("/statuses", h.Order.GetStatusOptions)
		orders.GET("/number/:number", h.Order.GetOrderByNumber)
		orders.GET("/:id", h.Order.GetOrder)
		orders.PATCH("/:id/status", h.Order.UpdateOrderStatus)
		orders.PATCH("/:id/payment", h.Order.UpdatePaymentStatus)
		orders.POST("/:id/cancel", h.Order.CancelOrder)

		orders.GET("/:id/invoice", h.Invoice.GenerateInvoice)
		orders.GET("/:id/invoice/data", h.Invoice.GetInvoiceData)
		orders.POST("/:id/invoice/email", h.Invoice.EmailInvoice)
	}
}

// SetupAdminRoutes sets up staff and policy management routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers) {
	users := rg.Group("/users")
	{
		users.GET("", h.UserAdmin.GetUsers)
		users.POST("", h.UserAdmin.CreateUser)
		users.GET("/counts", h.UserAdmin.GetUserCounts)
		users.GET("/:id", h.UserAdmin.GetUser)
		users.PATCH("/:id/status", h.UserAdmin.UpdateUserStatus)
		users.PATCH("/:id/role", h.UserAdmin.UpdateUserRole)
		users.POST("/:id/reset-password", h.UserAdmin.ResetPassword)
	}

	policies := rg.Group("/authz")
	{
		policies.GET("/roles/:role/policies", h.Authz.GetRolePolicies)
		policies.POST("/policies", h.Authz.GrantPolicy)
		policies.DELETE("/policies", h.Authz.RevokePolicy)
	}
}
