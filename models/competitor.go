package models

import (
	"time"
)

// Competitor is a rival business tracked against one of a client's locations.
type Competitor struct {
	ID         uint      `json:"competitor_id" gorm:"primaryKey;autoIncrement"`
	AgencyID   uint      `json:"agency_id" gorm:"column:agency_id;not null;index"`
	LocationID uint      `json:"location_id" gorm:"column:location_id;not null;index"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null"`
	PlaceID    *string   `json:"place_id,omitempty" gorm:"column:place_id;type:varchar(128)"`
	Website    *string   `json:"website,omitempty" gorm:"type:varchar(512)"`
	Notes      *string   `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy  uint      `json:"created_by" gorm:"column:created_by"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Competitor) TableName() string { return "competitors" }
