package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Auth validates a bearer token and stores the caller's user id and role on
// the request context. Token issuance lives in a separate service; this
// middleware only verifies.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Authorization header must be in format 'Bearer <token>'")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "The provided token is invalid or expired")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "The provided token is invalid or expired")
			return
		}

		// Numeric JSON claims decode as float64.
		id, ok := claims[UserIDKey].(float64)
		if !ok {
			abortUnauthorized(c, "Token is missing the user_id claim")
			return
		}
		c.Set(UserIDKey, int64(id))
		if role, ok := claims[RoleKey].(string); ok {
			c.Set(RoleKey, role)
		}

		c.Next()
	}
}

// RequireRole guards a route group behind a role claim.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions",
				},
			})
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated user's id, or 0 when unauthenticated.
func CallerID(c *gin.Context) int64 {
	id, _ := c.Get(UserIDKey)
	v, _ := id.(int64)
	return v
}

// CallerRole returns the authenticated user's role claim.
func CallerRole(c *gin.Context) string {
	role, _ := c.Get(RoleKey)
	v, _ := role.(string)
	return v
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
