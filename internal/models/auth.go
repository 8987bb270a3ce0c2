package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Token is an API token for automated publishers (CMS hooks, CI jobs).
type Token struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Name         string     `gorm:"not null" json:"name"`
	SecretHash   string     `gorm:"uniqueIndex" json:"-"`
	AllowedPaths StringList `gorm:"type:text" json:"allowed_paths"` // page path scopes, e.g. ["/blog"]
	LastUsedAt   *time.Time `json:"last_used_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	IsAdmin      bool       `gorm:"default:false" json:"is_admin"`
	AllowedPaths StringList `gorm:"type:text;default:'[]'" json:"allowed_paths"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
