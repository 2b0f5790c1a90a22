package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"factorydesk/internal/domain"
	jwtsvc "factorydesk/internal/pkg/jwt"
	"factorydesk/internal/pkg/response"
)

const userContextKey = "session_user"

// Auth validates the bearer token and puts the session identity on
// the request context.
func Auth(j *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
			c.Abort()
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
			c.Abort()
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Empty token")
			c.Abort()
			return
		}

		claims, err := j.ValidateToken(tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			c.Abort()
			return
		}

		c.Set(userContextKey, claims.User())
		c.Next()
	}
}

// SessionUser returns the identity set by Auth.
func SessionUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// AdminOnly rejects everyone but the administrator.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := SessionUser(c)
		if u == nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}
		if u.Role != domain.RoleAdmin {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
