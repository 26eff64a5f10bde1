package models

import (
	"time"
)

// GoogleConnection stores an agency's Google Business Profile OAuth grant.
// RefreshToken is sealed by the token vault before it reaches this row.
type GoogleConnection struct {
	ID           uint       `json:"connection_id" gorm:"primaryKey;autoIncrement"`
	AgencyID     uint       `json:"agency_id" gorm:"column:agency_id;not null;uniqueIndex"`
	GoogleEmail  string     `json:"google_email" gorm:"column:google_email;type:varchar(255);not null"`
	RefreshToken string     `json:"-" gorm:"column:refresh_token;type:text;not null"`
	Scopes       string     `json:"scopes" gorm:"type:varchar(512)"`
	ConnectedBy  uint       `json:"connected_by" gorm:"column:connected_by"`
	ConnectedAt  time.Time  `json:"connected_at" gorm:"column:connected_at;autoCreateTime"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty" gorm:"column:revoked_at"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (GoogleConnection) TableName() string { return "google_connections" }
