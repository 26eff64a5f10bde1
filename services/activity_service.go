package services

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

// ActivityService appends to the agency audit trail. Recording is best
// effort: a failed insert is logged and swallowed so it can never fail the
// operation being audited.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	if db == nil {
		db = config.DB
	}
	return &ActivityService{db: db}
}

func (s *ActivityService) Record(agencyID, operatorID uint, action, entityType, entityID string, detail any) {
	entry := models.ActivityLog{
		AgencyID:   agencyID,
		OperatorID: operatorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			s := string(b)
			entry.Detail = &s
		}
	}

	if err := s.db.Create(&entry).Error; err != nil {
		config.Logger.Warn("could not record activity",
			zap.String("action", action),
			zap.Uint("agency_id", agencyID),
			zap.Error(err))
	}
}

func (s *ActivityService) Recent(agencyID uint, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var entries []models.ActivityLog
	err := s.db.Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
