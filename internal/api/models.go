package api

import (
	"time"

	"github.com/kovi/metahead/internal/metatags"
	"github.com/kovi/metahead/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&PageHead{},
		&models.User{},
		&models.Token{},
	)
}

// PageHead is the stored head configuration of one page.
type PageHead struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Path      string            `gorm:"type:text;not null;uniqueIndex" json:"path"`
	Config    models.HeadConfig `gorm:"type:text;not null" json:"config"`
	Locked    *bool             `gorm:"default:false" json:"locked"`
	UpdatedBy string            `gorm:"type:text" json:"updated_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `gorm:"index" json:"updated_at"`
}

func (p PageHead) IsLocked() bool {
	return p.Locked != nil && *p.Locked
}

type PageSummary struct {
	Path      string    `json:"path"`
	Locked    bool      `json:"locked,omitempty"`
	Tags      int       `json:"tags"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HeadResponse struct {
	PageHead
	Model metatags.Model `json:"model"`
}

type HeadPatchRequest struct {
	Locked *bool `json:"locked"`
}
