package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rutgers-seed/proposal-portal/internal/identity"
	"github.com/rutgers-seed/proposal-portal/internal/interface/http/response"
)

// Context ключи для gin.Context.
const (
	ContextAdminEmailKey = "adminEmail"
	ContextSessionKey    = "adminSession"
)

// SessionVerifier проверяет токен сессии администратора.
type SessionVerifier interface {
	Verify(token string) (*identity.Claims, error)
}

// AdminSessionMiddleware пропускает только запросы с действующим токеном сессии.
// Токен берётся из заголовка Authorization, для WebSocket допускается ?token=.
func AdminSessionMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			response.Unauthorized(c, "требуется вход администратора")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminEmailKey, claims.Email)
		c.Set(ContextSessionKey, raw)
		c.Next()
	}
}

// BearerToken достаёт токен из заголовка Authorization или пустую строку.
func BearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
