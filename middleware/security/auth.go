package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtlib "chatapp/tools/security"
)

// CtxUserIDKey is where the middleware stores the verified requester id.
// Handlers read it through UserID; nothing downstream ever parses tokens.
const CtxUserIDKey = "authUserID"

// Middleware verifies the Bearer token and injects the user id into the
// gin context. Mutating routes get their requester identity exclusively
// from here, never from request bodies.
func Middleware(opts jwtlib.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
			return
		}
		uid, err := jwtlib.Verify(opts, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

// UserID returns the authenticated requester id set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
