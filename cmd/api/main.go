// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/authz"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/domain/analytics"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/domain/customer"
	"github.com/your-org/hardware-admin/internal/domain/inventory"
	"github.com/your-org/hardware-admin/internal/domain/invoice"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/domain/supplier"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/infrastructure/database/postgres"
	"github.com/your-org/hardware-admin/internal/infrastructure/database/redis"
	"github.com/your-org/hardware-admin/internal/interfaces/http"
	"github.com/your-org/hardware-admin/internal/interfaces/http/handlers"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
	"github.com/your-org/hardware-admin/internal/interfaces/http/routes"
	"github.com/your-org/hardware-admin/internal/pkg/email"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/pdf"
	"github.com/your-org/hardware-admin/internal/queue"
	"github.com/your-org/hardware-admin/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	appLogger.WithFields(logrus.Fields{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting application")

	// Connect to database
	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		appLogger.WithError(err).Fatal("Database health check failed")
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), cfg, appLogger)
	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		appLogger.WithError(err).Warn("Index creation failed")
	}
	if err := migration.SeedInitialData(); err != nil {
		appLogger.WithError(err).Fatal("Data seeding failed")
	}
	if cfg.IsDevelopment() {
		migration.GetTableInfo()
	}

	// Carts live in Redis; without it they fall back to process memory
	checks := map[string]http.HealthCheck{"database": db.Health}
	var cartStore cart.Store
	var rateCounter middleware.Counter
	redisClient, err := redis.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, carts are kept in memory and rate limiting is off")
		cartStore = cart.NewMemoryStore()
	} else {
		defer redisClient.Close()
		cartStore = cart.NewRedisStore(redisClient.GetClient(), cfg.Cart.SessionTTL)
		rateCounter = middleware.NewRedisCounter(redisClient.GetClient())
		checks["redis"] = redisClient.Health
	}

	queueClient := queue.NewClient(cfg)
	defer queueClient.Close()

	// Authorization policies
	authzService, err := authz.NewService(db.GetDB())
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize authorization")
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		appLogger.WithError(err).Fatal("Failed to seed authorization policies")
	}

	// Domain services
	gormDB := db.GetDB()
	userService := user.NewService(gormDB, cfg, appLogger)
	adminService := user.NewAdminService(gormDB, cfg, appLogger)
	productService := product.NewService(gormDB, appLogger)
	categoryService := product.NewCategoryService(gormDB)
	supplierService := supplier.NewService(gormDB)
	customerService := customer.NewService(gormDB)
	inventoryService := inventory.NewService(gormDB, queueClient, appLogger)
	cartService := cart.NewService(cartStore, productService, inventoryService, cart.NewQuantityPolicy(cfg.Cart), appLogger)
	orderService := order.NewService(gormDB, cfg, cartService, inventoryService, customerService, queueClient, appLogger)
	pdfService := pdf.NewService(cfg)
	invoiceService := invoice.NewService(cfg, orderService, customerService, adminService, pdfService, queueClient, appLogger)
	analyticsService := analytics.NewService(gormDB, orderService, analytics.Counters{
		Products:  productService.CountProducts,
		Customers: customerService.Count,
		Suppliers: supplierService.Count,
		LowStock:  inventoryService.CountLowStock,
	})

	// Background worker
	var jobs *worker.Service
	if cfg.Queue.Enabled {
		consumer := worker.NewConsumer(invoiceService, pdfService, email.NewEmailService(cfg, appLogger), appLogger)
		jobs, err = worker.NewService(cfg, consumer, appLogger)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create worker")
		}
		go func() {
			if err := jobs.Start(); err != nil {
				appLogger.WithError(err).Fatal("Failed to start worker")
			}
		}()
	}

	server := http.NewServer(cfg, http.Options{
		Handlers: &routes.Handlers{
			Auth:      handlers.NewAuthHandler(userService, cartService, appLogger),
			Cart:      handlers.NewCartHandler(cartService, appLogger),
			Product:   handlers.NewProductHandler(productService, appLogger),
			Category:  handlers.NewCategoryHandler(categoryService, appLogger),
			Supplier:  handlers.NewSupplierHandler(supplierService, appLogger),
			Customer:  handlers.NewCustomerHandler(customerService, appLogger),
			Inventory: handlers.NewInventoryHandler(inventoryService, appLogger),
			Order:     handlers.NewOrderHandler(orderService, appLogger),
			Invoice:   handlers.NewInvoiceHandler(invoiceService, appLogger),
			UserAdmin: handlers.NewUserAdminHandler(adminService, appLogger),
			Analytics: handlers.NewAnalyticsHandler(analyticsService, appLogger),
			Authz:     handlers.NewAuthzHandler(authzService, appLogger),
		},
		Guards: routes.Guards{
			Tokens:   userService,
			Enforcer: authzService,
			Logger:   appLogger,
		},
		RateCounter: rateCounter,
		Checks:      checks,
	}, appLogger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	if jobs != nil {
		jobs.Stop()
	}

	appLogger.Info("Server shutdown completed")
}
