package models

import (
	"time"
)

const (
	PostTypeUpdate = "update"
	PostTypeOffer  = "offer"
	PostTypeEvent  = "event"
)

var PostContentTypes = []string{PostTypeUpdate, PostTypeOffer, PostTypeEvent}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

type Post struct {
	ID          uint       `json:"post_id" gorm:"primaryKey;autoIncrement"`
	AgencyID    uint       `json:"agency_id" gorm:"column:agency_id;not null;index"`
	LocationID  uint       `json:"location_id" gorm:"column:location_id;not null;index"`
	Title       *string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	ContentType string     `json:"content_type" gorm:"column:content_type;type:enum('update','offer','event');not null;default:'update'"`
	CTAURL      *string    `json:"cta_url,omitempty" gorm:"column:cta_url;type:varchar(512)"`
	Status      string     `json:"status" gorm:"type:enum('draft','scheduled','published','failed');not null;default:'draft'"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" gorm:"column:scheduled_at"`
	PublishedAt *time.Time `json:"published_at,omitempty" gorm:"column:published_at"`
	CreatedBy   uint       `json:"created_by" gorm:"column:created_by"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Location Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Post) TableName() string { return "posts" }
