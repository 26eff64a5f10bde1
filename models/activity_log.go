package models

import (
	"time"
)

type ActivityLog struct {
	ID         uint      `json:"activity_id" gorm:"primaryKey;autoIncrement"`
	AgencyID   uint      `json:"agency_id" gorm:"column:agency_id;not null;index"`
	OperatorID uint      `json:"operator_id" gorm:"column:operator_id;not null"`
	Action     string    `json:"action" gorm:"type:varchar(64);not null"`
	EntityType string    `json:"entity_type" gorm:"column:entity_type;type:varchar(32)"`
	EntityID   string    `json:"entity_id" gorm:"column:entity_id;type:varchar(64)"`
	Detail     *string   `json:"detail,omitempty" gorm:"column:detail;type:json"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
