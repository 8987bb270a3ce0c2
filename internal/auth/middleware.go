package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func setIdentity(c *gin.Context, userID uint, username string, isAdmin bool, allowedPaths []string) {
	c.Set("user_id", userID)
	c.Set("username", username)
	c.Set("is_admin", isAdmin)
	c.Set("allowed_paths", allowedPaths)
}

// Identify populates the context with user info if a valid token is found.
// It allows anonymous requests. It only fails if a token is present but invalid.
func Identify(secret string, db *gorm.DB, cache *UserCache) gin.HandlerFunc {
	log := logrus.WithField("module", "auth")

	return func(c *gin.Context) {
		if apiToken := c.GetHeader("X-API-Token"); apiToken != "" {
			var t models.Token
			result := db.Preload("User").Where("secret_hash = ?", HashToken(apiToken)).Limit(1).Find(&t)
			if result.Error != nil {
				log.WithError(result.Error).Error("token lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error during authentication"})
				return
			}
			if result.RowsAffected == 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Token"})
				return
			}
			if t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Token has expired"})
				return
			}

			// UpdateColumn skips hooks and updated_at
			db.Model(&t).UpdateColumn("last_used_at", time.Now())

			setIdentity(c, t.UserID, t.User.Username, t.User.IsAdmin, t.AllowedPaths)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next() // Anonymous user
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid format"})
			return
		}

		claims, err := ValidateToken(parts[1], secret)
		if err != nil {
			log.Infof("validatetoken error: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Expired or invalid session"})
			return
		}

		entry, found := cache.Get(claims.UserID)
		if !found {
			// Cache miss: check the real database
			var user models.User
			res := db.Select("id", "is_admin", "allowed_paths").Limit(1).Find(&user, claims.UserID)
			if res.Error != nil {
				log.WithError(res.Error).Error("user lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid auth"})
				return
			}
			if res.RowsAffected == 0 {
				cache.Set(claims.UserID, false, false, nil)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
				return
			}

			entry = cachedUser{exists: true, isAdmin: user.IsAdmin, allowedPaths: user.AllowedPaths}
			cache.Set(claims.UserID, true, user.IsAdmin, user.AllowedPaths)
		}

		if !entry.exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account disabled"})
			return
		}

		setIdentity(c, claims.UserID, claims.Username, entry.isAdmin, entry.allowedPaths)
		c.Next()
	}
}

// EnsureAuth returns true if the user is identified, otherwise aborts with 401.
func EnsureAuth(c *gin.Context) bool {
	if _, exists := c.Get("username"); !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return false
	}
	return true
}

// EnsureAdmin returns true if the user is an admin, otherwise aborts with 403.
// It automatically calls EnsureAuth first.
func EnsureAdmin(c *gin.Context) bool {
	if !EnsureAuth(c) {
		return false
	}
	if !c.GetBool("is_admin") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
		return false
	}
	return true
}

func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		if EnsureAuth(c) {
			c.Next()
		}
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if EnsureAdmin(c) {
			c.Next()
		}
	}
}
