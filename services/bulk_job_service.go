package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gbp-agency-api/apperror"
	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

// BulkJobService owns the bulk_jobs ledger. Rows are only ever created and
// updated; deletion is not offered anywhere so the table stays a full audit
// trail of every import.
type BulkJobService struct {
	db *gorm.DB
}

func NewBulkJobService(db *gorm.DB) *BulkJobService {
	if db == nil {
		db = config.DB
	}
	return &BulkJobService{db: db}
}

type CreateJobInput struct {
	AgencyID  uint
	Type      ImportType
	TotalRows int
	CreatedBy uint
	Metadata  models.JobMetadata
}

// CreateJob opens a pending ledger row. TotalRows is fixed here for the
// job's lifetime.
func (s *BulkJobService) CreateJob(input *CreateJobInput) (*models.BulkJob, error) {
	if input == nil {
		return nil, errors.New("input is nil")
	}
	if input.TotalRows <= 0 {
		return nil, apperror.New(apperror.CodeInvalidInput, "job must cover at least one row")
	}

	job := &models.BulkJob{
		ID:         uuid.New().String(),
		AgencyID:   input.AgencyID,
		Type:       string(input.Type),
		Status:     models.BulkJobStatusPending,
		TotalItems: input.TotalRows,
		CreatedBy:  input.CreatedBy,
	}
	job.SetMetadata(input.Metadata)

	if err := s.db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("create bulk job: %w", err)
	}
	return job, nil
}

// GetJob loads a job scoped to the caller's agency.
func (s *BulkJobService) GetJob(agencyID uint, jobID string) (*models.BulkJob, error) {
	var job models.BulkJob
	err := s.db.Where("id = ? AND agency_id = ?", jobID, agencyID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Newf(apperror.CodeNotFound, "job %s not found", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("load bulk job: %w", err)
	}
	return &job, nil
}

func (s *BulkJobService) ListJobs(agencyID uint, limit int) ([]models.BulkJob, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var jobs []models.BulkJob
	if err := s.db.Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list bulk jobs: %w", err)
	}
	return jobs, nil
}

// MarkProcessing moves a pending job to processing and stamps started_at on
// the first call only; a job already processing passes through unchanged.
func (s *BulkJobService) MarkProcessing(job *models.BulkJob) error {
	if job.Status == models.BulkJobStatusProcessing {
		return nil
	}
	if job.Status != models.BulkJobStatusPending {
		return apperror.Newf(apperror.CodeInvalidState, "job %s is %s", job.ID, job.Status)
	}
	job.Status = models.BulkJobStatusProcessing
	if job.StartedAt == nil {
		now := time.Now()
		job.StartedAt = &now
	}
	return s.Checkpoint(job)
}

// Checkpoint overwrites the ledger row with the job's in-memory progress.
// Writers are not coordinated: when two callers process the same job the
// last checkpoint wins.
func (s *BulkJobService) Checkpoint(job *models.BulkJob) error {
	updates := map[string]interface{}{
		"status":          job.Status,
		"processed_items": job.ProcessedItems,
		"failed_items":    job.FailedItems,
		"errors":          job.Errors,
		"started_at":      job.StartedAt,
		"completed_at":    job.CompletedAt,
	}
	if err := s.db.Model(&models.BulkJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("checkpoint job %s: %w", job.ID, err)
	}
	return nil
}

// CancelJob marks a non-terminal job cancelled. Cancellation takes effect
// between processing calls; a batch already in flight runs to completion of
// that batch.
func (s *BulkJobService) CancelJob(agencyID uint, jobID string) (*models.BulkJob, error) {
	job, err := s.GetJob(agencyID, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		return nil, apperror.Newf(apperror.CodeInvalidState, "job %s is already %s", job.ID, job.Status)
	}
	job.Status = models.BulkJobStatusCancelled
	if err := s.Checkpoint(job); err != nil {
		return nil, err
	}
	return job, nil
}
