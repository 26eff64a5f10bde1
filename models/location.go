package models

import (
	"time"
)

type Location struct {
	ID              uint       `json:"location_id" gorm:"primaryKey;autoIncrement"`
	AgencyID        uint       `json:"agency_id" gorm:"column:agency_id;not null;index"`
	ClientID        uint       `json:"client_id" gorm:"column:client_id;not null;index"`
	Name            string     `json:"name" gorm:"type:varchar(255);not null"`
	Address         string     `json:"address" gorm:"type:varchar(512);not null"`
	City            *string    `json:"city,omitempty" gorm:"type:varchar(128)"`
	State           *string    `json:"state,omitempty" gorm:"type:varchar(128)"`
	PostalCode      *string    `json:"postal_code,omitempty" gorm:"column:postal_code;type:varchar(16)"`
	Country         *string    `json:"country,omitempty" gorm:"type:varchar(64)"`
	Phone           *string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Latitude        *float64   `json:"latitude,omitempty" gorm:"column:latitude"`
	Longitude       *float64   `json:"longitude,omitempty" gorm:"column:longitude"`
	PlaceID         *string    `json:"place_id,omitempty" gorm:"column:place_id;type:varchar(128)"`
	PrimaryCategory *string    `json:"primary_category,omitempty" gorm:"column:primary_category;type:varchar(128)"`
	GoogleName      *string    `json:"google_location_name,omitempty" gorm:"column:google_location_name;type:varchar(255)"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty" gorm:"column:last_synced_at"`
	CreatedBy       uint       `json:"created_by" gorm:"column:created_by"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (Location) TableName() string { return "locations" }
