package middleware

import (
	"net/http"
	"strings"

	"civicreport-be/internal/auth"
	"civicreport-be/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserIDKey = "user_id"
	ctxRoleKey   = "user_role"

	authCookieName = "auth_token"
)

// RequireAuth rejects requests without a valid token and stores the
// caller's id and role in the gin context.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "No authorization token provided",
			})
			return
		}

		claims, err := auth.ParseToken(jwtSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Invalid authorization token",
			})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuth populates identity when a valid token is present and lets
// anonymous requests through untouched. Listing endpoints use it so voting
// state can be personalized.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if claims, err := auth.ParseToken(jwtSecret, tokenString); err == nil {
				c.Set(ctxUserIDKey, claims.UserID)
				c.Set(ctxRoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, ok := CurrentUser(c)
		if !ok || role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false, "message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller's id and role, if any.
func CurrentUser(c *gin.Context) (string, models.Role, bool) {
	idVal, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", "", false
	}
	id, _ := idVal.(string)
	if id == "" {
		return "", "", false
	}

	role := models.RoleUser
	if roleVal, ok := c.Get(ctxRoleKey); ok {
		if r, ok := roleVal.(models.Role); ok {
			role = r
		}
	}
	return id, role, true
}

// extractToken checks the Authorization header first, then the auth
// cookie set at login.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return header[7:]
		}
		return header
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}
