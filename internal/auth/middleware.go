package auth

import (
	"net/http"
	"strings"
	"time"

	"social-calling/internal/backend"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// RequireAccessToken verifies an access token and injects the identity into
// the request context. The raw token is also attached for backend calls.
// RBAC checks belong to internal/rbac.
func RequireAccessToken(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		claims, err := m.Verify(tok, TokenTypeAccess, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		id := claims.Identity()
		ctx := WithIdentity(c.Request.Context(), id)
		ctx = backend.WithBearer(ctx, tok)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", id.UserID)
		c.Set("role", id.Role)

		c.Next()
	}
}
