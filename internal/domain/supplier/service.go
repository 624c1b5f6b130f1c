// internal/domain/supplier/service.go
package supplier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/hardware-admin/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles supplier business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new supplier service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListRequest represents supplier list query parameters
type ListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
}

// CreateRequest represents supplier creation data
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

// UpdateRequest represents supplier update data
type UpdateRequest struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

// ListResponse represents a page of suppliers
type ListResponse struct {
	Suppliers  []Supplier            `json:"suppliers"`
	Pagination pagination.Pagination `json:"pagination"`
}

// List retrieves suppliers with search and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var suppliers []Supplier
	var total int64

	query := s.db.Model(&Supplier{})

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ? OR LOWER(email) LIKE ?", search, search, search)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}

	err := query.Order("name ASC").Scopes(pagination.Paginate(req.Page, req.Limit)).Find(&suppliers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve suppliers: %w", err)
	}

	return &ListResponse{
		Suppliers:  suppliers,
		Pagination: pagination.New(req.Page, req.Limit, total),
	}, nil
}

// Get retrieves a supplier by ID
func (s *Service) Get(id uint) (*Supplier, error) {
	var supplier Supplier
	if err := s.db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to retrieve supplier: %w", err)
	}
	return &supplier, nil
}

// Create creates a new supplier
func (s *Service) Create(req *CreateRequest) (*Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(name, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Name:        name,
		ContactName: req.ContactName,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if err := s.db.Create(&supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return &supplier, nil
}

// Update updates an existing supplier
func (s *Service) Update(id uint, req *UpdateRequest) (*Supplier, error) {
	supplier, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureUniqueName(name, id); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.ContactName != nil {
		updates["contact_name"] = *req.ContactName
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(supplier).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update supplier: %w", err)
		}
	}
	return s.Get(id)
}

// Delete soft deletes a supplier
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Supplier{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete supplier: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSupplierNotFound
	}
	return nil
}

// Count returns the number of active suppliers
func (s *Service) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&Supplier{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count suppliers: %w", err)
	}
	return count, nil
}

func (s *Service) ensureUniqueName(name string, exceptID uint) error {
	var count int64
	s.db.Model(&Supplier{}).Unscoped().
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID).
		Count(&count)
	if count > 0 {
		return ErrDuplicateSupplier
	}
	return nil
}
