package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/config"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Access denied. No token provided.")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set("userID", claims.UserID)

		c.Next()
	}
}

// RequireAdmin restricts a route group to admin accounts. Role flags
// live on the user record, so it must run after AuthMiddleware.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return requireFlag(db, func(u *models.User) bool { return u.IsAdmin },
		"Access denied. Admin privileges required.")
}

// RequireDoctor restricts a route group to accounts with an approved
// doctor profile.
func RequireDoctor(db *gorm.DB) gin.HandlerFunc {
	return requireFlag(db, func(u *models.User) bool { return u.IsDoctor },
		"Access denied. Doctor privileges required.")
}

func requireFlag(db *gorm.DB, allowed func(*models.User) bool, denied string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			utils.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil || !allowed(&user) {
			utils.Forbidden(c, denied)
			c.Abort()
			return
		}

		c.Next()
	}
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}
