package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

// NotificationService mails operators about finished imports. Delivery
// problems are logged only; a lost mail never surfaces to the API caller.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db}
}

// JobCompleted mails the operator who created the job a summary of the
// finished import.
func (s *NotificationService) JobCompleted(job *models.BulkJob) {
	if job == nil || job.CreatedBy == 0 {
		return
	}

	var operator models.Operator
	err := s.db.Where("id = ? AND agency_id = ?", job.CreatedBy, job.AgencyID).First(&operator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	if err != nil {
		config.Logger.Warn("could not load operator for job mail", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	if operator.Email == "" {
		return
	}

	succeeded := job.ProcessedItems - job.FailedItems
	subject := fmt.Sprintf("Bulk %s import finished: %d of %d rows imported", job.Type, succeeded, job.TotalItems)
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your %s import has finished.</p>
<ul>
<li>Rows processed: %d</li>
<li>Imported: %d</li>
<li>Failed: %d</li>
</ul>
<p>Job reference: %s</p>`,
		operator.Name, job.Type, job.ProcessedItems, succeeded, job.FailedItems, job.ID)

	if err := config.SendMail([]string{operator.Email}, subject, html); err != nil {
		config.Logger.Warn("could not send job completion mail",
			zap.String("job_id", job.ID),
			zap.String("to", operator.Email),
			zap.Error(err))
	}
}
