package models

import (
	"time"
)

const (
	OperatorRoleOwner   = "owner"
	OperatorRoleManager = "manager"
	OperatorRoleStaff   = "staff"
)

type Agency struct {
	ID        uint      `json:"agency_id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Plan      string    `json:"plan" gorm:"type:varchar(32);not null;default:'trial'"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// Operator is a person at an agency who signs in through the hosted auth
// provider. AuthSubject holds the provider's subject claim.
type Operator struct {
	ID          uint       `json:"operator_id" gorm:"primaryKey;autoIncrement"`
	AgencyID    uint       `json:"agency_id" gorm:"column:agency_id;not null;index"`
	AuthSubject string     `json:"-" gorm:"column:auth_subject;type:varchar(128);uniqueIndex"`
	Email       string     `json:"email" gorm:"column:email;type:varchar(255);not null"`
	Name        string     `json:"name" gorm:"column:name;type:varchar(255)"`
	Role        string     `json:"role" gorm:"type:enum('owner','manager','staff');not null;default:'staff'"`
	IsActive    bool       `json:"is_active" gorm:"column:is_active;not null;default:true"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty" gorm:"column:last_seen_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Agency Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
}

func (Agency) TableName() string   { return "agencies" }
func (Operator) TableName() string { return "operators" }
