// internal/domain/user/admin_service.go
package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db              *gorm.DB
	passwordManager *auth.PasswordManager
	logger          *logrus.Logger
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *AdminService {
	return &AdminService{
		db:              db,
		passwordManager: auth.NewPasswordManager(cfg),
		logger:          logger,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	Status    string `form:"status"` // active, inactive, all
	Role      string `form:"role"`   // admin, representative, all
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []User                `json:"users"`
	Pagination pagination.Pagination `json:"pagination"`
}

// CreateUserRequest represents a new staff account
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password"` // generated when empty
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role" binding:"required"`
}

// CreateUserResponse carries the temporary password when one was generated
type CreateUserResponse struct {
	User              *User  `json:"user"`
	TemporaryPassword string `json:"temporary_password,omitempty"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive *bool  `json:"is_active" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// UserRoleUpdateRequest represents a role change
type UserRoleUpdateRequest struct {
	Role Role `json:"role" binding:"required"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	page, limit := pagination.Normalize(req.Page, req.Limit)
	query := s.db.Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?",
			searchTerm, searchTerm, searchTerm, "%"+req.Search+"%",
		)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	if req.Role != "" && req.Role != "all" {
		role := Role(req.Role)
		if !role.IsValid() {
			return nil, ErrInvalidRole
		}
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	err := query.
		Order(buildUserOrderClause(req.SortBy, req.SortOrder)).
		Scopes(pagination.Paginate(page, limit)).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	return &UserListResponse{
		Users:      users,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// GetUser retrieves a single user by ID
func (s *AdminService) GetUser(userID uint) (*User, error) {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}

// CreateUser creates a staff account. Without a password a temporary one is
// generated and returned once.
func (s *AdminService) CreateUser(req *CreateUserRequest) (*CreateUserResponse, error) {
	if !req.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing int64
	if err := s.db.Model(&User{}).Unscoped().Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateEmail
	}

	password := req.Password
	var temporary string
	if password == "" {
		generated, err := s.passwordManager.GenerateTemporaryPassword()
		if err != nil {
			return nil, err
		}
		password, temporary = generated, generated
	}

	hashedPassword, err := s.passwordManager.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      req.Role,
		IsActive:  true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User created")

	return &CreateUserResponse{User: &user, TemporaryPassword: temporary}, nil
}

// UpdateUserStatus activates or deactivates an account
func (s *AdminService) UpdateUserStatus(actorID, userID uint, req *UserStatusUpdateRequest) (*User, error) {
	if actorID == userID {
		return nil, ErrSelfChange
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	active := *req.IsActive
	if !active && user.IsAdmin() && user.IsActive {
		if err := s.ensureAnotherAdmin(userID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(&User{}).Where("id = ?", userID).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.IsActive = active

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"is_active": active,
		"reason":    req.Reason,
		"by":        actorID,
	}).Info("User status updated")

	return user, nil
}

// UpdateUserRole changes the role of an account
func (s *AdminService) UpdateUserRole(actorID, userID uint, req *UserRoleUpdateRequest) (*User, error) {
	if !req.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	if actorID == userID {
		return nil, ErrSelfChange
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() && req.Role != RoleAdmin && user.IsActive {
		if err := s.ensureAnotherAdmin(userID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(&User{}).Where("id = ?", userID).Update("role", req.Role).Error; err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	user.Role = req.Role

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"role":    req.Role,
		"by":      actorID,
	}).Info("User role updated")

	return user, nil
}

// ResetPassword replaces a user's password with a generated one
func (s *AdminService) ResetPassword(userID uint) (string, error) {
	if _, err := s.GetUser(userID); err != nil {
		return "", err
	}

	password, err := s.passwordManager.GenerateTemporaryPassword()
	if err != nil {
		return "", err
	}
	hashedPassword, err := s.passwordManager.HashPassword(password)
	if err != nil {
		return "", err
	}

	if err := s.db.Model(&User{}).Where("id = ?", userID).Update("password", hashedPassword).Error; err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("Password reset")
	return password, nil
}

// CountByRole counts active users per role
func (s *AdminService) CountByRole() (map[Role]int64, error) {
	var rows []struct {
		Role  Role
		Count int64
	}
	err := s.db.Model(&User{}).
		Where("is_active = ?", true).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	counts := make(map[Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (s *AdminService) ensureAnotherAdmin(exceptID uint) error {
	var admins int64
	err := s.db.Model(&User{}).
		Where("role = ? AND is_active = ? AND id <> ?", RoleAdmin, true, exceptID).
		Count(&admins).Error
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins == 0 {
		return ErrLastAdmin
	}
	return nil
}

func buildUserOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":    true,
		"email":         true,
		"first_name":    true,
		"last_name":     true,
		"last_login_at": true,
		"role":          true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}
