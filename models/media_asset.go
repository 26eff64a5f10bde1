package models

import (
	"time"
)

const (
	MediaCategoryPhoto    = "photo"
	MediaCategoryLogo     = "logo"
	MediaCategoryCover    = "cover"
	MediaCategoryInterior = "interior"
	MediaCategoryExterior = "exterior"
	MediaCategoryTeam     = "team"
	MediaCategoryProduct  = "product"
)

var MediaCategories = []string{
	MediaCategoryPhoto,
	MediaCategoryLogo,
	MediaCategoryCover,
	MediaCategoryInterior,
	MediaCategoryExterior,
	MediaCategoryTeam,
	MediaCategoryProduct,
}

type MediaAsset struct {
	ID          uint      `json:"media_id" gorm:"primaryKey;autoIncrement"`
	AgencyID    uint      `json:"agency_id" gorm:"column:agency_id;not null;index"`
	LocationID  uint      `json:"location_id" gorm:"column:location_id;not null;index"`
	URL         string    `json:"url" gorm:"column:url;type:varchar(1024);not null"`
	Category    string    `json:"category" gorm:"type:enum('photo','logo','cover','interior','exterior','team','product');not null;default:'photo'"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedBy   uint      `json:"created_by" gorm:"column:created_by"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (MediaAsset) TableName() string { return "media_assets" }
