package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/user/domain"
	"github.com/ridloal/fashion-dropship-store/internal/user/service"
)

// Keys set on the gin context by the auth middleware.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	userService service.UserService
}

func NewAuthMiddleware(us service.UserService) *AuthMiddleware {
	return &AuthMiddleware{userService: us}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	token := bearerToken(c)
	if token == "" {
		return false
	}
	claims, err := m.userService.VerifyToken(token)
	if err != nil {
		return false
	}
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, string(claims.Role))
	return true
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			httpx.Abort(c, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present and never rejects.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRole(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			httpx.Abort(c, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
			return
		}
		if !service.HasPermission(domain.Role(c.GetString(ContextRole)), required) {
			httpx.Abort(c, http.StatusForbidden, httpx.CodeForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
