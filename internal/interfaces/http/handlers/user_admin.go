// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
)

// UserAdminHandler handles staff account management
type UserAdminHandler struct {
	adminService *user.AdminService
	logger       *logrus.Logger
}

// NewUserAdminHandler creates a new admin user handler
func NewUserAdminHandler(adminService *user.AdminService, logger *logrus.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// GetUsers handles GET /users
func (h *UserAdminHandler) GetUsers(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.adminService.GetUsers(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users retrieved successfully",
		"data":    response,
	})
}

// GetUser handles GET /users/:id
func (h *UserAdminHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	u, err := h.adminService.GetUser(id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User retrieved successfully",
		"data":    u,
	})
}

// CreateUser handles POST /users
func (h *UserAdminHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.adminService.CreateUser(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"data":    response,
	})
}

// UpdateUserStatus handles PATCH /users/:id/status
func (h *UserAdminHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req user.UserStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	u, err := h.adminService.UpdateUserStatus(actorID, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update user status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated successfully",
		"data":    u,
	})
}

// UpdateUserRole handles PATCH /users/:id/role
func (h *UserAdminHandler) UpdateUserRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req user.UserRoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	u, err := h.adminService.UpdateUserRole(actorID, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update user role")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User role updated successfully",
		"data":    u,
	})
}

// ResetPassword handles POST /users/:id/reset-password. The new password is
// shown once.
func (h *UserAdminHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	password, err := h.adminService.ResetPassword(id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully",
		"data": gin.H{
			"temporary_password": password,
		},
	})
}

// GetUserCounts handles GET /users/counts
func (h *UserAdminHandler) GetUserCounts(c *gin.Context) {
	counts, err := h.adminService.CountByRole()
	if err != nil {
		respondError(c, h.logger, err, "Failed to count users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User counts retrieved successfully",
		"data":    counts,
	})
}
