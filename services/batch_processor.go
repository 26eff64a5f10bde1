package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gbp-agency-api/apperror"
	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

const (
	// checkpointInterval is how many rows may pass between ledger writes.
	// A crash loses at most this much progress.
	checkpointInterval = 10
	// maxJobErrors bounds the stored error log; older entries fall off so
	// the ledger row cannot grow without limit on a large broken file.
	maxJobErrors = 100
)

type BatchRowResult struct {
	RowIndex int    `json:"row_index"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	RecordID string `json:"record_id,omitempty"`
}

type BatchResult struct {
	JobID            string           `json:"job_id"`
	ProcessedInBatch int              `json:"processed_in_batch"`
	TotalProcessed   int              `json:"total_processed"`
	TotalFailed      int              `json:"total_failed"`
	IsComplete       bool             `json:"is_complete"`
	Results          []BatchRowResult `json:"results"`
}

// jobNotifier delivers the completion notice for a finished job.
type jobNotifier interface {
	JobCompleted(job *models.BulkJob)
}

// BatchProcessor applies submitted row batches to the data store and keeps
// the job ledger current while doing so.
type BatchProcessor struct {
	db       *gorm.DB
	jobs     *BulkJobService
	activity *ActivityService
	notify   jobNotifier
}

func NewBatchProcessor(db *gorm.DB) *BatchProcessor {
	if db == nil {
		db = config.DB
	}
	return &BatchProcessor{
		db:       db,
		jobs:     NewBulkJobService(db),
		activity: NewActivityService(db),
		notify:   NewNotificationService(db),
	}
}

// ProcessRows runs one batch of rows through the job's inserter, in order.
// A failed row is recorded and the batch moves on; only ledger write
// failures abort. Ledger writes are plain overwrites, so if two callers
// process the same job concurrently the last checkpoint wins.
func (p *BatchProcessor) ProcessRows(agencyID uint, jobID string, rows []ParsedRow, actorID uint) (*BatchResult, error) {
	job, err := p.jobs.GetJob(agencyID, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		return nil, apperror.Newf(apperror.CodeInvalidState, "job %s is already %s", job.ID, job.Status)
	}
	if err := p.jobs.MarkProcessing(job); err != nil {
		return nil, err
	}

	// A row of a type outside the registry can only come from a ledger row
	// written by an older build; every row of such a batch fails uniformly.
	spec := specFor(ImportType(job.Type))

	jobErrors := job.ErrorList()
	result := &BatchResult{JobID: job.ID, Results: make([]BatchRowResult, 0, len(rows))}
	sinceCheckpoint := 0

	for _, row := range rows {
		rowRes := BatchRowResult{RowIndex: row.Index}

		if spec == nil {
			rowRes.Message = "unknown job type"
		} else {
			recordID, insErr := spec.insert(p.db, agencyID, actorID, row.Data)
			if insErr != nil {
				rowRes.Message = insErr.Error()
			} else {
				rowRes.Success = true
				rowRes.RecordID = recordID
			}
		}

		job.ProcessedItems++
		if !rowRes.Success {
			job.FailedItems++
			jobErrors = append(jobErrors, models.JobError{RowIndex: row.Index, Message: rowRes.Message})
			if len(jobErrors) > maxJobErrors {
				jobErrors = jobErrors[len(jobErrors)-maxJobErrors:]
			}
			config.Logger.Debug("bulk row failed",
				zap.String("job_id", job.ID),
				zap.Int("row_index", row.Index),
				zap.String("reason", rowRes.Message))
		}
		result.Results = append(result.Results, rowRes)

		sinceCheckpoint++
		if sinceCheckpoint >= checkpointInterval {
			job.SetErrorList(jobErrors)
			if err := p.jobs.Checkpoint(job); err != nil {
				return nil, p.failJob(job, err)
			}
			sinceCheckpoint = 0
		}
	}

	job.SetErrorList(jobErrors)
	if job.ProcessedItems >= job.TotalItems {
		job.Status = models.BulkJobStatusCompleted
		if job.CompletedAt == nil {
			now := time.Now()
			job.CompletedAt = &now
		}
	}
	if err := p.jobs.Checkpoint(job); err != nil {
		return nil, p.failJob(job, err)
	}

	result.ProcessedInBatch = len(rows)
	result.TotalProcessed = job.ProcessedItems
	result.TotalFailed = job.FailedItems
	result.IsComplete = job.Status == models.BulkJobStatusCompleted

	p.activity.Record(agencyID, actorID, "bulk_import.batch", "bulk_job", job.ID, map[string]any{
		"rows_in_batch":   len(rows),
		"total_processed": job.ProcessedItems,
		"total_failed":    job.FailedItems,
		"is_complete":     result.IsComplete,
	})
	if result.IsComplete {
		completed := *job
		go p.notify.JobCompleted(&completed)
	}

	return result, nil
}

// failJob is the fatal path: the ledger itself could not be written. The
// failed status is saved best effort and the caller gets an internal error.
func (p *BatchProcessor) failJob(job *models.BulkJob, cause error) error {
	job.Status = models.BulkJobStatusFailed
	if err := p.jobs.Checkpoint(job); err != nil {
		config.Logger.Error("could not mark job failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
	return apperror.Wrap(cause, apperror.CodeInternal, "job ledger write failed")
}
