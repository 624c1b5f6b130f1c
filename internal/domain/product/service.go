// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	SupplierID uint   `form:"supplier_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	IsActive   *bool  `form:"is_active"`
}

// PackSizeRequest represents pack size data on create
type PackSizeRequest struct {
	Label     string      `json:"label" binding:"required"`
	SKU       string      `json:"sku" binding:"required"`
	Price     money.Money `json:"price"`
	IsActive  *bool       `json:"is_active"`
	SortOrder int         `json:"sort_order"`
}

// PackSizeUpdateRequest represents pack size update data
type PackSizeUpdateRequest struct {
	Label     *string      `json:"label"`
	Price     *money.Money `json:"price"`
	IsActive  *bool        `json:"is_active"`
	SortOrder *int         `json:"sort_order"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU         string            `json:"sku" binding:"required"`
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	CategoryID  uint              `json:"category_id" binding:"required"`
	SupplierID  *uint             `json:"supplier_id"`
	IsActive    *bool             `json:"is_active"`
	PackSizes   []PackSizeRequest `json:"pack_sizes" binding:"required,dive"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	CategoryID  *uint   `json:"category_id"`
	SupplierID  *uint   `json:"supplier_id"`
	IsActive    *bool   `json:"is_active"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	// Build query
	query := s.db.Model(&Product{})

	// Apply filters
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.SupplierID > 0 {
		query = query.Where("supplier_id = ?", req.SupplierID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?", search, search, search)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	err := query.
		Preload("Category").
		Preload("PackSizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Scopes(pagination.Paginate(req.Page, req.Limit)).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination.New(req.Page, req.Limit, total),
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Preload("PackSizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// CreateProduct creates a product together with its pack sizes
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	if len(req.PackSizes) == 0 {
		return nil, ErrNoPackSizes
	}

	// Check if SKU already exists
	var count int64
	s.db.Model(&Product{}).Unscoped().Where("sku = ?", req.SKU).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, req.SKU)
	}

	if err := s.ensureCategory(req.CategoryID); err != nil {
		return nil, err
	}

	product := Product{
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	labels := make(map[string]bool, len(req.PackSizes))
	for _, ps := range req.PackSizes {
		packSize, err := newPackSize(ps)
		if err != nil {
			return nil, err
		}
		if labels[packSize.Label] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePackSize, packSize.Label)
		}
		labels[packSize.Label] = true
		product.PackSizes = append(product.PackSizes, packSize)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, ps := range product.PackSizes {
			if err := ensureUniquePackSKU(tx, ps.SKU, 0); err != nil {
				return err
			}
		}
		// is_active has a database default, so false must be written explicitly
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		if !product.IsActive {
			if err := tx.Model(&Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
		}
		for _, ps := range product.PackSizes {
			if !ps.IsActive {
				if err := tx.Model(&PackSize{}).Where("id = ?", ps.ID).Update("is_active", false).Error; err != nil {
					return fmt.Errorf("failed to create pack size: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"sku":        product.SKU,
		"pack_sizes": len(product.PackSizes),
	}).Info("Product created")

	return s.GetProduct(product.ID)
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	result := s.db.Where("id = ?", id).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}

	// Update fields
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(*req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(id)
}

// DeleteProduct soft deletes a product. Carts still holding it see it as
// unavailable from then on.
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AddPackSize adds a pack size to a product
func (s *Service) AddPackSize(productID uint, req *PackSizeRequest) (*PackSize, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return nil, err
	}

	packSize, err := newPackSize(*req)
	if err != nil {
		return nil, err
	}
	packSize.ProductID = productID

	if err := s.ensureUniqueLabel(productID, packSize.Label, 0); err != nil {
		return nil, err
	}
	if err := ensureUniquePackSKU(s.db, packSize.SKU, 0); err != nil {
		return nil, err
	}

	if err := s.db.Create(&packSize).Error; err != nil {
		return nil, fmt.Errorf("failed to create pack size: %w", err)
	}
	if !packSize.IsActive {
		s.db.Model(&packSize).Update("is_active", false)
	}

	return &packSize, nil
}

// UpdatePackSize updates label, price or availability of a pack size. Prices already
// captured in carts and orders are unaffected.
func (s *Service) UpdatePackSize(productID, packSizeID uint, req *PackSizeUpdateRequest) (*PackSize, error) {
	packSize, err := s.getPackSize(productID, packSizeID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if err := s.ensureUniqueLabel(productID, label, packSizeID); err != nil {
			return nil, err
		}
		updates["label"] = label
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := s.db.Model(packSize).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update pack size: %w", err)
		}
	}

	return s.getPackSize(productID, packSizeID)
}

// RemovePackSize deletes a pack size from a product
func (s *Service) RemovePackSize(productID, packSizeID uint) error {
	result := s.db.Where("id = ? AND product_id = ?", packSizeID, productID).Delete(&PackSize{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete pack size: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPackSizeNotFound
	}
	return nil
}

// GetPackSize retrieves a pack size by ID regardless of product
func (s *Service) GetPackSize(packSizeID uint) (*PackSize, error) {
	var packSize PackSize
	if err := s.db.First(&packSize, packSizeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackSizeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pack size: %w", err)
	}
	return &packSize, nil
}

// LookupPackSize resolves an active pack size of an active product for the cart.
// Anything else is reported as cart.ErrProductUnavailable.
func (s *Service) LookupPackSize(ctx context.Context, productID uint, label string) (*cart.CatalogItem, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrProductUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	var packSize PackSize
	err = s.db.WithContext(ctx).
		Where("product_id = ? AND label = ? AND is_active = ?", productID, label, true).
		First(&packSize).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrProductUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve pack size: %w", err)
	}

	return &cart.CatalogItem{
		ProductID:   product.ID,
		PackSizeID:  packSize.ID,
		ProductName: product.Name,
		PackSize:    packSize.Label,
		Image:       product.Image,
		UnitPrice:   packSize.Price,
	}, nil
}

// CountProducts returns the number of products, optionally only active ones
func (s *Service) CountProducts(activeOnly bool) (int64, error) {
	var count int64
	query := s.db.Model(&Product{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (s *Service) getPackSize(productID, packSizeID uint) (*PackSize, error) {
	var packSize PackSize
	err := s.db.Where("id = ? AND product_id = ?", packSizeID, productID).First(&packSize).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackSizeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pack size: %w", err)
	}
	return &packSize, nil
}

func (s *Service) ensureCategory(categoryID uint) error {
	var count int64
	if err := s.db.Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Service) ensureUniqueLabel(productID uint, label string, exceptID uint) error {
	var count int64
	s.db.Model(&PackSize{}).
		Where("product_id = ? AND label = ? AND id <> ?", productID, label, exceptID).
		Count(&count)
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicatePackSize, label)
	}
	return nil
}

func ensureUniquePackSKU(db *gorm.DB, sku string, exceptID uint) error {
	var count int64
	db.Model(&PackSize{}).Where("sku = ? AND id <> ?", sku, exceptID).Count(&count)
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
	}
	return nil
}

func newPackSize(req PackSizeRequest) (PackSize, error) {
	if req.Price.IsNegative() {
		return PackSize{}, ErrNegativePrice
	}
	packSize := PackSize{
		Label:     strings.TrimSpace(req.Label),
		SKU:       strings.TrimSpace(req.SKU),
		Price:     money.New(req.Price.Decimal),
		IsActive:  true,
		SortOrder: req.SortOrder,
	}
	if req.IsActive != nil {
		packSize.IsActive = *req.IsActive
	}
	return packSize, nil
}

// buildOrderClause builds ORDER BY clause for sorting
func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"sku":        true,
		"created_at": true,
		"updated_at": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}
