package middleware

import (
	"net/http"
	"strings"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// accessVerifier is the slice of the token service the middleware needs.
type accessVerifier interface {
	VerifyAccess(raw string) (domain.TokenClaims, error)
}

// Auth validates the access token from the Authorization header or the
// access_token cookie and sets userID/email/role in the gin context.
// Every failure mode returns the same generic 401 — the reason never
// reaches the client.
func Auth(tokens accessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.VerifyAccess(raw)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// RequireRole runs after Auth and rejects callers whose role does not
// match. Store and product management is STORE_OWNER only.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"statusCode": http.StatusForbidden,
				"errors":     "Forbidden",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"statusCode": http.StatusUnauthorized,
		"errors":     errUnauthorized,
	})
}
