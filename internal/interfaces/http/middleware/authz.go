// internal/interfaces/http/middleware/authz.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Enforcer decides whether a role may call a route
type Enforcer interface {
	Enforce(role, path, method string) (bool, error)
}

// Authorize checks the signed-in role against the route policies. It must run
// after AuthMiddleware.
func Authorize(enforcer Enforcer, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRoleFromContext(c)
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := enforcer.Enforce(role, resource, c.Request.Method)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"role":   role,
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}).Error("Authorization check failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Authorization check failed",
			})
			c.Abort()
			return
		}

		if !allowed {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(ContextRequestID),
				"role":       role,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
			}).Warn("Permission denied")
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
