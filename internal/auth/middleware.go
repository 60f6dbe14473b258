package auth

import (
	"net/http"
	"strings"

	svcErr "github.com/flamematch/backend/internal/errors"

	"github.com/gin-gonic/gin"
)

// Context key under which the middleware stores the caller's user id.
const userIDKey = "auth.userID"

// Middleware verifies the bearer token and injects the current user id
// into the request context. Requests without a valid token are rejected
// before any handler runs.
//
// WebSocket clients cannot set headers from the browser API, so a
// `token` query parameter is accepted as a fallback.
func Middleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUserID returns the authenticated caller's id. All operations
// abort with ErrNotAuthenticated when no session is present.
func CurrentUserID(c *gin.Context) (string, error) {
	id := c.GetString(userIDKey)
	if id == "" {
		return "", svcErr.ErrNotAuthenticated
	}
	return id, nil
}
