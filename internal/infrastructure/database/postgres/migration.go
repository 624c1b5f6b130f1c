// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/domain/customer"
	"github.com/your-org/hardware-admin/internal/domain/inventory"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/domain/supplier"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&supplier.Supplier{},
		&product.Category{},
		&product.Product{},
		&product.PackSize{},

		&customer.Customer{},

		&inventory.StockItem{},
		&inventory.StockMovement{},
		&inventory.StockAlert{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes the list screens filter on
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Users
		"CREATE INDEX IF NOT EXISTS idx_users_role_active ON users(role, is_active)",

		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_supplier_active ON products(supplier_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_pack_sizes_product_active ON pack_sizes(product_id, is_active)",

		// Stock
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_item_created ON stock_movements(stock_item_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_alerts_resolved ON stock_alerts(is_resolved, created_at DESC)",

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_representative_status ON orders(representative_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_created ON orders(customer_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",
	}

	failed := 0
	for _, statement := range indexes {
		if err := m.db.Exec(statement).Error; err != nil {
			m.logger.WithError(err).WithField("statement", statement).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Database indexes checked")

	if failed > 0 {
		return fmt.Errorf("%d indexes could not be created", failed)
	}
	return nil
}

// SeedInitialData creates the first admin and the default categories. It is
// safe to run on every start.
func (m *Migration) SeedInitialData() error {
	if err := m.seedAdminUser(); err != nil {
		return err
	}
	return m.seedCategories()
}

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Hand Tools", Slug: "hand-tools", Description: "Hammers, screwdrivers, saws and pliers", SortOrder: 1},
		{Name: "Power Tools", Slug: "power-tools", Description: "Drills, grinders and sanders", SortOrder: 2},
		{Name: "Fasteners", Slug: "fasteners", Description: "Screws, nails, bolts and anchors", SortOrder: 3},
		{Name: "Paint & Finishes", Slug: "paint-finishes", Description: "Paint, primers, fillers and varnish", SortOrder: 4},
		{Name: "Plumbing", Slug: "plumbing", Description: "Pipes, fittings and sealants", SortOrder: 5},
		{Name: "Electrical", Slug: "electrical", Description: "Cable, switches and fittings", SortOrder: 6},
	}

	for _, category := range categories {
		category.IsActive = true
		result := m.db.Where(product.Category{Slug: category.Slug}).FirstOrCreate(&category)
		if result.Error != nil {
			return fmt.Errorf("failed to seed category %s: %w", category.Slug, result.Error)
		}
		if result.RowsAffected > 0 {
			m.logger.WithField("category", category.Name).Info("Created category")
		}
	}
	return nil
}

func (m *Migration) seedAdminUser() error {
	var admins int64
	if err := m.db.Model(&user.User{}).Where("role = ?", user.RoleAdmin).Count(&admins).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}

	passwords := auth.NewPasswordManager(m.config)
	password := m.config.App.SeedAdminPassword
	generated := password == ""
	if generated {
		var err error
		if password, err = passwords.GenerateTemporaryPassword(); err != nil {
			return err
		}
	}

	hashedPassword, err := passwords.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return fmt.Errorf("SEED_ADMIN_PASSWORD is too weak: %w", err)
		}
		return err
	}

	admin := user.User{
		Email:     m.config.App.SeedAdminEmail,
		Password:  hashedPassword,
		FirstName: "Admin",
		LastName:  "User",
		Role:      user.RoleAdmin,
		IsActive:  true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	entry := m.logger.WithFields(logrus.Fields{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	if generated {
		entry = entry.WithField("password", password)
	}
	entry.Warn("Created initial admin user")
	return nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() {
	var total int64
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			continue
		}

		var count int64
		if err := m.db.Model(model).Count(&count).Error; err != nil {
			m.logger.WithError(err).WithField("table", stmt.Schema.Table).Warn("Failed to count rows")
			continue
		}
		total += count
		m.logger.WithFields(logrus.Fields{
			"table": stmt.Schema.Table,
			"rows":  count,
		}).Debug("Table info")
	}
	m.logger.WithField("rows", total).Info("Database ready")
}
