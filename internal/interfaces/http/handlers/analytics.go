// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/analytics"
)

// AnalyticsHandler handles the dashboard endpoint
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	logger           *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// GetDashboard handles GET /dashboard. Representatives see figures for their
// own orders only.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data":    stats,
	})
}
