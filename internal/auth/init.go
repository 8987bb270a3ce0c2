package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/models"
	"gorm.io/gorm"
)

const (
	defaultAdminUser     = "admin"
	defaultAdminPassword = "admin123"
)

// BootstrapAdmin creates the default admin account on an empty user table.
func BootstrapAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{Username: defaultAdminUser, IsAdmin: true, AllowedPaths: models.StringList{"/"}}
	if err := admin.SetPassword(defaultAdminPassword); err != nil {
		return err
	}
	return db.Create(&admin).Error
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/_/api/login", h.Login)
	r.GET("/_/api/auth/me", Protect(), h.GetMe)

	admin := r.Group("/_/api/admin", AdminRequired())
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.PATCH("/users/:id", h.UpdateUser)
		admin.DELETE("/users/:id", h.DeleteUser)

		admin.GET("/tokens", h.ListTokens)
		admin.POST("/tokens", h.CreateToken)
		admin.DELETE("/tokens/:id", h.DeleteToken)
	}
}
