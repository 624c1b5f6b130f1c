// internal/domain/customer/service.go
package customer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/hardware-admin/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles customer business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new customer service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListRequest represents customer list query parameters
type ListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Search   string `form:"search"`
	City     string `form:"city"`
	IsActive *bool  `form:"is_active"`
}

// CreateRequest represents customer creation data
type CreateRequest struct {
	Name      string `json:"name" binding:"required"`
	Company   string `json:"company"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	TaxNumber string `json:"tax_number"`
	Notes     string `json:"notes"`
}

// UpdateRequest represents customer update data
type UpdateRequest struct {
	Name      *string `json:"name"`
	Company   *string `json:"company"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	TaxNumber *string `json:"tax_number"`
	Notes     *string `json:"notes"`
}

// ListResponse represents a page of customers
type ListResponse struct {
	Customers  []Customer            `json:"customers"`
	Pagination pagination.Pagination `json:"pagination"`
}

// List retrieves customers with search and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var customers []Customer
	var total int64

	query := s.db.Model(&Customer{})

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			search, search, search, search,
		)
	}
	if req.City != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(req.City))
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	err := query.Order("name ASC, id ASC").Scopes(pagination.Paginate(req.Page, req.Limit)).Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}

	return &ListResponse{
		Customers:  customers,
		Pagination: pagination.New(req.Page, req.Limit, total),
	}, nil
}

// Get retrieves a customer by ID
func (s *Service) Get(id uint) (*Customer, error) {
	var customer Customer
	if err := s.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to retrieve customer: %w", err)
	}
	return &customer, nil
}

// GetActive retrieves a customer that can be billed
func (s *Service) GetActive(id uint) (*Customer, error) {
	customer, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, ErrCustomerInactive
	}
	return customer, nil
}

// Create creates a new customer
func (s *Service) Create(createdBy uint, req *CreateRequest) (*Customer, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureUniqueEmail(email, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		Name:      strings.TrimSpace(req.Name),
		Company:   strings.TrimSpace(req.Company),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Address:   req.Address,
		City:      strings.TrimSpace(req.City),
		TaxNumber: strings.TrimSpace(req.TaxNumber),
		Notes:     req.Notes,
		IsActive:  true,
		CreatedBy: createdBy,
	}
	if err := s.db.Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

// Update updates an existing customer
func (s *Service) Update(id uint, req *UpdateRequest) (*Customer, error) {
	customer, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Company != nil {
		updates["company"] = strings.TrimSpace(*req.Company)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := s.ensureUniqueEmail(email, id); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if req.TaxNumber != nil {
		updates["tax_number"] = strings.TrimSpace(*req.TaxNumber)
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(customer).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update customer: %w", err)
		}
	}
	return s.Get(id)
}

// SetActive activates or deactivates a customer. Past bills keep referencing it.
func (s *Service) SetActive(id uint, active bool) (*Customer, error) {
	result := s.db.Model(&Customer{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrCustomerNotFound
	}
	return s.Get(id)
}

// Count returns the number of active customers
func (s *Service) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&Customer{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

func (s *Service) ensureUniqueEmail(email string, exceptID uint) error {
	if email == "" {
		return nil
	}
	var count int64
	s.db.Model(&Customer{}).Where("email = ? AND id <> ?", email, exceptID).Count(&count)
	if count > 0 {
		return ErrDuplicateEmail
	}
	return nil
}
