package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/audit"
	"github.com/kovi/metahead/internal/config"
	"github.com/kovi/metahead/internal/models"
	"github.com/kovi/metahead/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB        *gorm.DB
	Config    *config.Config
	Audit     *audit.Auditor
	UserCache *UserCache
	Log       *logrus.Entry
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Username     string            `json:"username" binding:"required"`
	Password     string            `json:"password" binding:"required"`
	AllowedPaths models.StringList `json:"allowed_paths"`
	IsAdmin      bool              `json:"is_admin"`
}

// UpdateUserRequest changes only the fields that are present.
type UpdateUserRequest struct {
	Password     *string           `json:"password"`
	IsAdmin      *bool             `json:"is_admin"`
	AllowedPaths models.StringList `json:"allowed_paths"`
}

type CreateTokenRequest struct {
	UserID       uint              `json:"user_id" binding:"required"`
	Name         string            `json:"name" binding:"required"`
	AllowedPaths models.StringList `json:"allowed_paths"`
	Expires      string            `json:"expires"` // absolute date or relative ("30d", "2w")
}

// pageScopes cleans scope entries into page paths. nil stays nil so an
// update can tell "not sent" from "cleared".
func pageScopes(in models.StringList) models.StringList {
	if in == nil {
		return nil
	}
	out := make(models.StringList, 0, len(in))
	for _, s := range in {
		out = append(out, utils.CleanPagePath(s))
	}
	return out
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// findUser loads a user by id, answering 404/500 itself when it fails.
func (h *AuthHandler) findUser(c *gin.Context, id uint) (*models.User, bool) {
	var user models.User
	res := h.DB.Limit(1).Find(&user, id)
	if res.Error != nil {
		h.Log.WithError(res.Error).Error("user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User lookup failed"})
		return nil, false
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

// Login handles POST /_/api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User
	res := h.DB.Where("username = ?", req.Username).Limit(1).Find(&user)
	if res.Error != nil || res.RowsAffected == 0 || !user.CheckPassword(req.Password) {
		h.Log.WithField("username", req.Username).Info("login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := GenerateToken(user, h.Config.Server.JwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"username":      user.Username,
		"is_admin":      user.IsAdmin,
		"allowed_paths": user.AllowedPaths,
	})
}

// GetMe handles GET /_/api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":            c.GetUint("user_id"),
		"username":      c.GetString("username"),
		"is_admin":      c.GetBool("is_admin"),
		"allowed_paths": c.GetStringSlice("allowed_paths"),
	})
}

// ListUsers handles GET /_/api/admin/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("username").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /_/api/admin/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Username:     req.Username,
		IsAdmin:      req.IsAdmin,
		AllowedPaths: pageScopes(req.AllowedPaths),
	}
	if user.AllowedPaths == nil {
		user.AllowedPaths = models.StringList{}
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		h.Audit.WithContext(c).Failure(audit.ActionUserCreate, user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create user"})
		return
	}

	h.Audit.WithContext(c).Success(audit.ActionUserCreate, user.Username,
		"created_by", c.GetString("username"),
		"allowed_paths", user.AllowedPaths,
	)
	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PATCH /_/api/admin/users/:id
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if id == c.GetUint("user_id") && req.IsAdmin != nil && !*req.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot remove your own admin status"})
		return
	}

	user, ok := h.findUser(c, id)
	if !ok {
		return
	}

	updates := map[string]any{}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
			return
		}
		updates["password_hash"] = user.PasswordHash
	}
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}
	if scopes := pageScopes(req.AllowedPaths); scopes != nil {
		updates["allowed_paths"] = scopes
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to change"})
		return
	}

	log := h.Audit.WithContext(c)
	if err := h.DB.Model(user).Updates(updates).Error; err != nil {
		log.Failure(audit.ActionUserUpdate, user.Username, err, "changed_by", c.GetString("username"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}

	// scopes and admin flag are cached by Identify
	h.UserCache.Invalidate(user.ID)

	log.Success(audit.ActionUserUpdate, user.Username,
		"changed_by", c.GetString("username"),
		"is_admin_set", req.IsAdmin != nil,
		"scopes_set", req.AllowedPaths != nil,
	)
	c.JSON(http.StatusOK, gin.H{"status": "updated", "username": user.Username})
}

// DeleteUser handles DELETE /_/api/admin/users/:id
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if id == c.GetUint("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete your own account"})
		return
	}

	user, ok := h.findUser(c, id)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		h.Audit.WithContext(c).Failure(audit.ActionUserDelete, user.Username, err,
			"deleted_by", c.GetString("username"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	h.UserCache.Invalidate(user.ID)

	h.Audit.WithContext(c).Success(audit.ActionUserDelete, user.Username,
		"deleted_by", c.GetString("username"))
	c.Status(http.StatusNoContent)
}

// CreateToken handles POST /_/api/admin/tokens
func (h *AuthHandler) CreateToken(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var expiresAt *time.Time
	if req.Expires != "" {
		t, err := utils.ParseExpiry(req.Expires)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiry format"})
			return
		}
		expiresAt = &t
	}

	owner, ok := h.findUser(c, req.UserID)
	if !ok {
		return
	}

	plainToken, err := GenerateRandomToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	token := models.Token{
		UserID:       owner.ID,
		Name:         req.Name,
		AllowedPaths: pageScopes(req.AllowedPaths),
		ExpiresAt:    expiresAt,
		SecretHash:   HashToken(plainToken),
	}
	if token.AllowedPaths == nil {
		token.AllowedPaths = models.StringList{}
	}

	if err := h.DB.Omit("User").Create(&token).Error; err != nil {
		h.Audit.WithContext(c).Failure(audit.ActionTokenNew, token.Name, err, "owner", owner.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	h.Audit.WithContext(c).Success(audit.ActionTokenNew, token.Name,
		"owner", owner.Username,
		"allowed_paths", token.AllowedPaths,
	)

	// the plain token is only ever shown here
	c.JSON(http.StatusCreated, gin.H{
		"id":            token.ID,
		"plain_token":   plainToken,
		"name":          token.Name,
		"allowed_paths": token.AllowedPaths,
		"expires_at":    token.ExpiresAt,
	})
}

// ListTokens handles GET /_/api/admin/tokens
func (h *AuthHandler) ListTokens(c *gin.Context) {
	var tokens []models.Token
	if err := h.DB.Preload("User").Order("id").Find(&tokens).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tokens"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// DeleteToken handles DELETE /_/api/admin/tokens/:id
func (h *AuthHandler) DeleteToken(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var token models.Token
	err := h.DB.Preload("User").First(&token, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token lookup failed"})
		return
	}

	if err := h.DB.Delete(&token).Error; err != nil {
		h.Audit.WithContext(c).Failure(audit.ActionTokenDrop, token.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}

	h.Audit.WithContext(c).Success(audit.ActionTokenDrop, token.Name,
		"owner", token.User.Username,
		"allowed_paths", token.AllowedPaths,
	)
	c.Status(http.StatusNoContent)
}
