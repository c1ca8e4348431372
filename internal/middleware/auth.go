package middleware

import (
	"net/http"
	"strings"

	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the
// Authorization header and stores the caller's identity in the context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set("claims", claims)
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// CurrentRole returns the caller's role, or guest when unauthenticated.
func CurrentRole(c *gin.Context) models.Role {
	roleValue, exists := c.Get("role")
	if !exists {
		return models.RoleGuest
	}
	role, ok := roleValue.(models.Role)
	if !ok {
		return models.RoleGuest
	}
	return role
}

// CurrentUserID returns the caller's user id, empty when unauthenticated.
func CurrentUserID(c *gin.Context) string {
	id, exists := c.Get("userID")
	if !exists {
		return ""
	}
	userID, _ := id.(string)
	return userID
}

// RequireRole checks if the user has the specified role exactly.
func RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := CurrentRole(c)
		if userRole != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "Insufficient permissions",
				"required": requiredRole,
				"current":  userRole,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireLibrarian passes librarians and admins.
func RequireLibrarian() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentRole(c).AtLeastLibrarian() {
			c.JSON(http.StatusForbidden, gin.H{"error": "librarian access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin is a convenience function for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
