// internal/interfaces/http/handlers/authz.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/authz"
)

// AuthzHandler lets admins inspect and edit route policies
type AuthzHandler struct {
	authzService *authz.Service
	logger       *logrus.Logger
}

// NewAuthzHandler creates a new authorization policy handler
func NewAuthzHandler(authzService *authz.Service, logger *logrus.Logger) *AuthzHandler {
	return &AuthzHandler{
		authzService: authzService,
		logger:       logger,
	}
}

// PolicyRequest names one role policy
type PolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GetRolePolicies handles GET /authz/roles/:role/policies
func (h *AuthzHandler) GetRolePolicies(c *gin.Context) {
	policies, err := h.authzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve policies")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Policies retrieved successfully",
		"data":    policies,
	})
}

// GrantPolicy handles POST /authz/policies
func (h *AuthzHandler) GrantPolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, h.logger, err, "Failed to grant policy")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"role":   req.Role,
		"object": req.Object,
		"action": req.Action,
	}).Info("Policy granted")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Policy granted successfully",
	})
}

// RevokePolicy handles DELETE /authz/policies
func (h *AuthzHandler) RevokePolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, h.logger, err, "Failed to revoke policy")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"role":   req.Role,
		"object": req.Object,
		"action": req.Action,
	}).Info("Policy revoked")

	c.JSON(http.StatusOK, gin.H{
		"message": "Policy revoked successfully",
	})
}
