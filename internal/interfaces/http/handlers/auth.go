// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
)

// SessionCart is the part of the cart service logout needs
type SessionCart interface {
	ClearCart(ctx context.Context, sessionID string) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService *user.Service
	carts       SessionCart
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *user.Service, carts SessionCart, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		carts:       carts,
		logger:      logger,
	}
}

// Login handles user login. Every login opens a fresh cart session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.userService.Login(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    response,
	})
}

// RefreshToken handles token refresh. The cart session carries over.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err, "Failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"data":    response,
	})
}

// Logout handles user logout. Tokens stay valid until they expire; the
// session cart is dropped.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, ok := middleware.GetSessionIDFromContext(c); ok {
		if err := h.carts.ClearCart(c.Request.Context(), sessionID); err != nil {
			h.logger.WithError(err).WithField("session_id", sessionID).Warn("Failed to clear cart on logout")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser handles GET /auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// ChangePassword handles PUT /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(userID, &req); err != nil {
		respondError(c, h.logger, err, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}
