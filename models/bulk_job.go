package models

import (
	"encoding/json"
	"math"
	"time"
)

const (
	BulkJobStatusPending    = "pending"
	BulkJobStatusProcessing = "processing"
	BulkJobStatusCompleted  = "completed"
	BulkJobStatusFailed     = "failed"
	BulkJobStatusCancelled  = "cancelled"
)

// JobError is one insert failure kept on the job ledger.
type JobError struct {
	RowIndex int    `json:"row_index"`
	Message  string `json:"message"`
}

// JobMetadata captures the upload the job was created from.
type JobMetadata struct {
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	ValidRows   int    `json:"valid_rows"`
	WarningRows int    `json:"warning_rows"`
	ErrorRows   int    `json:"error_rows"`
}

// BulkJob is the ledger row for one CSV import. Jobs are never deleted;
// the table doubles as the agency's import audit trail.
type BulkJob struct {
	ID             string     `json:"job_id" gorm:"primaryKey;column:id;type:varchar(36)"`
	AgencyID       uint       `json:"agency_id" gorm:"column:agency_id;not null;index"`
	Type           string     `json:"type" gorm:"type:enum('client','location','post','media','competitor');not null"`
	Status         string     `json:"status" gorm:"type:enum('pending','processing','completed','failed','cancelled');not null;default:'pending'"`
	TotalItems     int        `json:"total_items" gorm:"column:total_items;not null;default:0"`
	ProcessedItems int        `json:"processed_items" gorm:"column:processed_items;not null;default:0"`
	FailedItems    int        `json:"failed_items" gorm:"column:failed_items;not null;default:0"`
	Errors         *string    `json:"-" gorm:"column:errors;type:json"`
	Metadata       *string    `json:"-" gorm:"column:metadata;type:json"`
	StartedAt      *time.Time `json:"started_at,omitempty" gorm:"column:started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CreatedBy      uint       `json:"created_by" gorm:"column:created_by"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (BulkJob) TableName() string { return "bulk_jobs" }

// IsTerminal reports whether the job can no longer accept row batches.
func (j *BulkJob) IsTerminal() bool {
	switch j.Status {
	case BulkJobStatusCompleted, BulkJobStatusFailed, BulkJobStatusCancelled:
		return true
	}
	return false
}

// Progress returns processed/total as a rounded percentage.
func (j *BulkJob) Progress() int {
	if j.TotalItems <= 0 {
		return 0
	}
	return int(math.Round(float64(j.ProcessedItems) / float64(j.TotalItems) * 100))
}

// ErrorList decodes the stored error log. A corrupt column reads as empty
// rather than failing the status call.
func (j *BulkJob) ErrorList() []JobError {
	if j.Errors == nil || *j.Errors == "" {
		return nil
	}
	var out []JobError
	if err := json.Unmarshal([]byte(*j.Errors), &out); err != nil {
		return nil
	}
	return out
}

func (j *BulkJob) SetErrorList(errs []JobError) {
	if len(errs) == 0 {
		j.Errors = nil
		return
	}
	b, err := json.Marshal(errs)
	if err != nil {
		return
	}
	s := string(b)
	j.Errors = &s
}

func (j *BulkJob) MetadataInfo() JobMetadata {
	var meta JobMetadata
	if j.Metadata == nil || *j.Metadata == "" {
		return meta
	}
	_ = json.Unmarshal([]byte(*j.Metadata), &meta)
	return meta
}

func (j *BulkJob) SetMetadata(meta JobMetadata) {
	b, err := json.Marshal(meta)
	if err != nil {
		return
	}
	s := string(b)
	j.Metadata = &s
}
