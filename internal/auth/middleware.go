package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth guards HTML pages: callers without a session are redirected
// to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFromSession(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// RequireAPIAuth guards JSON endpoints. Callers without a session get 401
// before any handler runs.
func RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFromSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}
