package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"github.com/cliniflow/clinic-manager/internal/policy"
)

// RequirePermission gates a route on the policy table. Must run after
// AuthMiddleware.
func RequirePermission(e *casbin.Enforcer, entity, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.MustGet(ContextUserRole).(string)

		if !policy.CanAccess(e, role, entity, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
