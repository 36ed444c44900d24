package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/utils"
)

// Context keys set by the auth middlewares.
const (
	CtxRestaurantID = "restaurantID"
	CtxRole         = "role"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(CtxRestaurantID, claims.RestaurantID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RestaurantOwner lets an owner through only for their own restaurant, taken
// from the :id path parameter. Platform admins may access any restaurant.
func RestaurantOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == utils.RolePlatformAdmin {
			c.Next()
			return
		}
		if role != utils.RoleOwner || c.GetString(CtxRestaurantID) != c.Param("id") {
			utils.RespondError(c, http.StatusForbidden, errors.New("access to this restaurant is not allowed"))
			c.Abort()
			return
		}
		c.Next()
	}
}
