package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"equity_research/pkg/model"
)

const sessionContextKey = "auth.session"

// RequireRole rejects the request before any handler work runs: 401 when
// no valid session is presented, 403 when the session's role does not
// satisfy the requirement.
func RequireRole(store SessionStore, required model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"okay":  false,
				"error": "authentication required",
			})
			return
		}
		session, ok := store.Lookup(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"okay":  false,
				"error": "session expired or invalid",
			})
			return
		}
		if !session.Allows(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"okay":  false,
				"error": "insufficient role",
			})
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// SessionFrom returns the authenticated session set by RequireRole.
func SessionFrom(c *gin.Context) *Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return nil
}

// WithRole gates a non-HTTP caller the same way RequireRole gates a
// request: fn runs only for a live session whose role satisfies the
// requirement.
func WithRole(store SessionStore, token string, required model.Role, fn func(*Session) error) error {
	if token == "" {
		return ErrUnauthorized
	}
	session, ok := store.Lookup(token)
	if !ok {
		return ErrUnauthorized
	}
	if !session.Allows(required) {
		return ErrForbidden
	}
	return fn(session)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// Browser clients carry the token in a cookie instead.
	if cookie, err := c.Cookie("session"); err == nil {
		return cookie
	}
	return ""
}
