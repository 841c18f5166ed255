package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// Superadmin restricts a route to superadmin accounts. It must run after
// JWT so the claims are present.
func Superadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)
		if !claims.Superadmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "superadmin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
