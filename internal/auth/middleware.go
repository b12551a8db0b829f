package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated admin.
const (
	ContextKeyAdminID  = "auth_admin_id"
	ContextKeyUsername = "auth_username"
)

// Middleware guards protected routes with bearer-token authentication.
type Middleware struct {
	tokens *TokenMaker
}

func NewMiddleware(tokens *TokenMaker) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handler rejects requests without a valid Authorization: Bearer token
// and stores the admin identity on the context otherwise.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
			return
		}

		claims, err := m.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Недействительный токен"})
			return
		}

		c.Set(ContextKeyAdminID, claims.AdminID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Next()
	}
}

// AdminID extracts the authenticated admin's id from the context.
// Returns 0 when the request was not authenticated.
func AdminID(c *gin.Context) uint {
	if v, ok := c.Get(ContextKeyAdminID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// SecurityHeadersMiddleware adds conservative security headers to all
// responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Referrer policy - don't leak URLs to external sites
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}
