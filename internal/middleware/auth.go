package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punchd/internal/auth"
	"github.com/balkashynov/punchd/internal/presence"
)

// Context keys set for downstream handlers.
const (
	KeyIdentityID   = "identity_id"
	KeySessionToken = "session_token"
)

// AuthRequired validates the Bearer token and records a heartbeat for the
// identity. Every authenticated request is a liveness signal; heartbeat
// failures never fail the request.
func AuthRequired(secret string, svc *presence.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}
		claims, err := auth.ParseToken(secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(KeyIdentityID, claims.IdentityID)
		c.Set(KeySessionToken, claims.SessionToken)

		svc.RecordHeartbeat(c.Request.Context(), claims.IdentityID, claims.SessionToken)
		c.Next()
	}
}

// IdentityID reads the authenticated identity from the gin context.
func IdentityID(c *gin.Context) uint {
	v, _ := c.Get(KeyIdentityID)
	id, _ := v.(uint)
	return id
}

// SessionToken reads the session token from the gin context.
func SessionToken(c *gin.Context) string {
	v, _ := c.Get(KeySessionToken)
	tok, _ := v.(string)
	return tok
}
