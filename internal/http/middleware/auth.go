package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
)

// ContextOwnerKey: ключ gin.Context, под которым лежит portfolio.Owner.
const ContextOwnerKey = "owner"

// OwnerResolver восстанавливает владельца по access токену.
type OwnerResolver interface {
	Owner(accessToken string) (portfolio.Owner, error)
}

// AuthMiddleware проверяет JWT access токен из заголовка Authorization.
// Для WebSocket, где заголовок не передать, токен берётся из query-параметра access_token.
func AuthMiddleware(resolver OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortWithError(c, apperror.ErrUnauthorized)
			return
		}

		owner, err := resolver.Owner(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ContextOwnerKey, owner)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c.IsWebsocket() {
		return c.Query("access_token")
	}
	return ""
}
