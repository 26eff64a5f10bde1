package models

import (
	"time"
)

// BillingEvent is a webhook event from the payment provider, stored once
// per provider event id. Subscription logic lives upstream; this table is
// intake only.
type BillingEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AgencyID   *uint     `json:"agency_id,omitempty" gorm:"column:agency_id;index"`
	EventID    string    `json:"event_id" gorm:"column:event_id;type:varchar(128);uniqueIndex;not null"`
	EventType  string    `json:"event_type" gorm:"column:event_type;type:varchar(64);not null"`
	Payload    string    `json:"-" gorm:"column:payload;type:json"`
	ReceivedAt time.Time `json:"received_at" gorm:"column:received_at;autoCreateTime"`
}

func (BillingEvent) TableName() string { return "billing_events" }
