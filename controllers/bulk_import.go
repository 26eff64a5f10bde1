package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gbp-agency-api/middleware"
	"gbp-agency-api/models"
	"gbp-agency-api/services"
	"gbp-agency-api/utils"
)

const maxBulkUploadBytes = 10 * 1024 * 1024

func isCSVUpload(header *multipart.FileHeader) bool {
	switch header.Header.Get("Content-Type") {
	case "text/csv", "application/csv", "application/vnd.ms-excel":
		return true
	}
	return strings.EqualFold(filepath.Ext(header.Filename), ".csv")
}

// UploadBulkImport receives a CSV plus its import type, validates every
// row, and opens a pending job sized to the file's row count. Nothing is
// written to the entity tables here; rows only reach the store through the
// processing endpoint.
func UploadBulkImport(c *gin.Context) {
	importType, err := services.ParseImportType(c.PostForm("import_type"))
	if err != nil {
		respondError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File is required", "code": "INVALID_INPUT"})
		return
	}
	defer file.Close()

	if !isCSVUpload(header) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File must be a CSV", "code": "INVALID_INPUT"})
		return
	}
	if header.Size > maxBulkUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File size exceeds 10MB limit", "code": "INVALID_INPUT"})
		return
	}

	parsed, err := services.ParseCSV(file)
	if err != nil {
		respondError(c, err)
		return
	}

	summary := services.ValidateRows(importType, parsed.Rows)

	// Keep the raw upload on disk next to the ledger row for audits.
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	uploadDir := filepath.Join(uploadPath, "bulk_imports")
	if err := os.MkdirAll(uploadDir, 0755); err == nil {
		dstPath := filepath.Join(uploadDir, utils.GenerateUniqueFilename(uploadDir, header.Filename))
		_ = c.SaveUploadedFile(header, dstPath)
	}

	job, err := services.NewBulkJobService(nil).CreateJob(&services.CreateJobInput{
		AgencyID:  middleware.AgencyID(c),
		Type:      importType,
		TotalRows: len(parsed.Rows),
		CreatedBy: middleware.OperatorID(c),
		Metadata: models.JobMetadata{
			FileName:    header.Filename,
			FileSize:    header.Size,
			ValidRows:   summary.Valid,
			WarningRows: summary.Warning,
			ErrorRows:   summary.Error,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"job_id":         job.ID,
		"import_type":    string(importType),
		"total_rows":     len(parsed.Rows),
		"valid_count":    summary.Valid,
		"warning_count":  summary.Warning,
		"error_count":    summary.Error,
		"rows":           summary.Outcomes,
		"parse_warnings": parsed.Warnings,
	})
}

type processRowPayload struct {
	RowIndex int               `json:"row_index"`
	Data     map[string]string `json:"data" binding:"required"`
}

type processRowsRequest struct {
	JobID string              `json:"job_id" binding:"required"`
	Rows  []processRowPayload `json:"rows" binding:"required"`
}

// ProcessBulkRows runs one caller-sized batch of rows against the job.
// Clients page through their validated rows and call this until the job
// reports completion.
func ProcessBulkRows(c *gin.Context) {
	var req processRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "job_id and rows are required", "code": "INVALID_INPUT"})
		return
	}
	if len(req.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "rows must not be empty", "code": "INVALID_INPUT"})
		return
	}

	rows := make([]services.ParsedRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, services.ParsedRow{Index: r.RowIndex, Data: r.Data})
	}

	result, err := services.NewBatchProcessor(nil).
		ProcessRows(middleware.AgencyID(c), req.JobID, rows, middleware.OperatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func jobStatusPayload(job *models.BulkJob) gin.H {
	return gin.H{
		"job_id":          job.ID,
		"type":            job.Type,
		"status":          job.Status,
		"total_items":     job.TotalItems,
		"processed_items": job.ProcessedItems,
		"failed_items":    job.FailedItems,
		"progress":        job.Progress(),
		"errors":          job.ErrorList(),
		"metadata":        job.MetadataInfo(),
		"started_at":      job.StartedAt,
		"completed_at":    job.CompletedAt,
		"created_at":      job.CreatedAt,
	}
}

// GetBulkJob returns the ledger row with computed progress.
func GetBulkJob(c *gin.Context) {
	job, err := services.NewBulkJobService(nil).GetJob(middleware.AgencyID(c), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": jobStatusPayload(job)})
}

// ListBulkJobs returns the agency's import history, newest first.
func ListBulkJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	jobs, err := services.NewBulkJobService(nil).ListJobs(middleware.AgencyID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(jobs))
	for i := range jobs {
		payload = append(payload, jobStatusPayload(&jobs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload, "count": len(payload)})
}

// CancelBulkJob stops a pending or in-flight job between batches.
func CancelBulkJob(c *gin.Context) {
	job, err := services.NewBulkJobService(nil).CancelJob(middleware.AgencyID(c), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job cancelled", "data": jobStatusPayload(job)})
}

// DownloadImportTemplate streams the starter CSV for an import type.
func DownloadImportTemplate(c *gin.Context) {
	importType, err := services.ParseImportType(c.Param("import_type"))
	if err != nil {
		respondError(c, err)
		return
	}

	tmpl, err := services.TemplateFor(importType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tmpl.FileName))
	c.Data(http.StatusOK, "text/csv", tmpl.Content)
}
