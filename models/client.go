package models

import (
	"time"
)

const (
	PackageTierStarter      = "starter"
	PackageTierProfessional = "professional"
	PackageTierEnterprise   = "enterprise"
)

// PackageTiers lists the sellable tiers in ascending price order.
var PackageTiers = []string{PackageTierStarter, PackageTierProfessional, PackageTierEnterprise}

type Client struct {
	ID          uint      `json:"client_id" gorm:"primaryKey;autoIncrement"`
	AgencyID    uint      `json:"agency_id" gorm:"column:agency_id;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null"`
	Phone       *string   `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Website     *string   `json:"website,omitempty" gorm:"type:varchar(512)"`
	ContactName *string   `json:"contact_name,omitempty" gorm:"column:contact_name;type:varchar(255)"`
	PackageTier string    `json:"package_tier" gorm:"column:package_tier;type:enum('starter','professional','enterprise');not null;default:'starter'"`
	Notes       *string   `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy   uint      `json:"created_by" gorm:"column:created_by"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Client) TableName() string { return "clients" }
