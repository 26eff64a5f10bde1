package services

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"gorm.io/gorm"

	"gbp-agency-api/apperror"
	"gbp-agency-api/models"
)

type notifierStub struct {
	ch chan *models.BulkJob
}

func newNotifierStub() *notifierStub {
	return &notifierStub{ch: make(chan *models.BulkJob, 1)}
}

func (n *notifierStub) JobCompleted(job *models.BulkJob) { n.ch <- job }

func (n *notifierStub) wait(t *testing.T) *models.BulkJob {
	t.Helper()
	select {
	case job := <-n.ch:
		return job
	case <-time.After(2 * time.Second):
		t.Fatalf("expected completion notification")
		return nil
	}
}

func newBatchProcessorForTest(db *gorm.DB, notify jobNotifier) *BatchProcessor {
	return &BatchProcessor{
		db:       db,
		jobs:     NewBulkJobService(db),
		activity: NewActivityService(db),
		notify:   notify,
	}
}

func makeClientRows(n, startIndex int) []ParsedRow {
	rows := make([]ParsedRow, 0, n)
	for i := 0; i < n; i++ {
		idx := startIndex + i
		rows = append(rows, ParsedRow{Index: idx, Data: map[string]string{
			"name":  fmt.Sprintf("Client %d", idx),
			"email": fmt.Sprintf("client%d@example.com", idx),
		}})
	}
	return rows
}

// checkpointRecorder collects the bound values of every ledger checkpoint.
type checkpointRecorder struct {
	processed []int64
	failed    []int64
	statuses  []string
	errors    []driver.Value
	started   []driver.Value
	completed []driver.Value
}

func (r *checkpointRecorder) capture(args []driver.NamedValue) {
	if len(args) != 8 {
		return
	}
	if v, ok := args[3].Value.(int64); ok {
		r.processed = append(r.processed, v)
	}
	if v, ok := args[2].Value.(int64); ok {
		r.failed = append(r.failed, v)
	}
	if s, ok := args[5].Value.(string); ok {
		r.statuses = append(r.statuses, s)
	}
	r.errors = append(r.errors, args[1].Value)
	r.started = append(r.started, args[4].Value)
	r.completed = append(r.completed, args[0].Value)
}

func (r *checkpointRecorder) lastErrorList(t *testing.T) []models.JobError {
	t.Helper()
	if len(r.errors) == 0 {
		t.Fatalf("no checkpoints recorded")
	}
	raw := r.errors[len(r.errors)-1]
	if raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		t.Fatalf("errors column bound as %T", raw)
	}
	var out []models.JobError
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("errors column is not valid json: %v", err)
	}
	return out
}

func activityStep() *queryStep {
	return &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("INSERT INTO `activity_logs`"),
	}
}

func TestProcessRowsCheckpointsEveryTenRows(t *testing.T) {
	rec := &checkpointRecorder{}

	steps := []*queryStep{
		selectJobStep("job-1", 7, bulkJobRow("job-1", 7, "client", "pending", 30, 0, 0, nil, nil)),
		updateJobStep(rec.capture),
	}
	for i := 0; i < 10; i++ {
		steps = append(steps, insertStep("clients", int64(101+i)))
	}
	steps = append(steps, updateJobStep(rec.capture))
	for i := 10; i < 20; i++ {
		steps = append(steps, insertStep("clients", int64(101+i)))
	}
	steps = append(steps, updateJobStep(rec.capture))
	for i := 20; i < 25; i++ {
		steps = append(steps, insertStep("clients", int64(101+i)))
	}
	steps = append(steps, updateJobStep(rec.capture), activityStep())

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	notify := newNotifierStub()
	processor := newBatchProcessorForTest(gormDB, notify)

	result, err := processor.ProcessRows(7, "job-1", makeClientRows(25, 1), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProcessedInBatch != 25 || result.TotalProcessed != 25 || result.TotalFailed != 0 {
		t.Errorf("unexpected totals: %+v", result)
	}
	if result.IsComplete {
		t.Errorf("25 of 30 rows must not complete the job")
	}
	if len(result.Results) != 25 {
		t.Fatalf("expected 25 row results, got %d", len(result.Results))
	}
	if result.Results[0].RecordID != "101" || result.Results[24].RecordID != "125" {
		t.Errorf("unexpected record ids: first=%q last=%q", result.Results[0].RecordID, result.Results[24].RecordID)
	}

	wantProcessed := []int64{0, 10, 20, 25}
	if len(rec.processed) != len(wantProcessed) {
		t.Fatalf("expected %d checkpoints, got %d", len(wantProcessed), len(rec.processed))
	}
	for i, want := range wantProcessed {
		if rec.processed[i] != want {
			t.Errorf("checkpoint %d: expected processed %d, got %d", i, want, rec.processed[i])
		}
	}
	for i, status := range rec.statuses {
		if status != models.BulkJobStatusProcessing {
			t.Errorf("checkpoint %d: expected processing status, got %q", i, status)
		}
	}

	if len(notify.ch) != 0 {
		t.Errorf("incomplete job must not notify")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRowsCompletesJobAndNotifies(t *testing.T) {
	startedAt := time.Date(2025, 11, 6, 9, 0, 0, 0, time.UTC)
	rec := &checkpointRecorder{}

	steps := []*queryStep{
		selectJobStep("job-1", 7, bulkJobRow("job-1", 7, "client", "processing", 5, 0, 0, nil, startedAt)),
	}
	for i := 0; i < 5; i++ {
		steps = append(steps, insertStep("clients", int64(301+i)))
	}
	steps = append(steps, updateJobStep(rec.capture), activityStep())

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	notify := newNotifierStub()
	processor := newBatchProcessorForTest(gormDB, notify)

	result, err := processor.ProcessRows(7, "job-1", makeClientRows(5, 1), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsComplete {
		t.Fatalf("expected job to complete")
	}

	if len(rec.statuses) != 1 || rec.statuses[0] != models.BulkJobStatusCompleted {
		t.Fatalf("expected one completed checkpoint, got %v", rec.statuses)
	}
	if rec.completed[0] == nil {
		t.Errorf("expected completed_at to be stamped")
	}
	// The original start stamp survives the final checkpoint.
	if got, ok := rec.started[0].(time.Time); !ok || got.Unix() != startedAt.Unix() {
		t.Errorf("expected started_at %v preserved, got %v", startedAt, rec.started[0])
	}

	done := notify.wait(t)
	if done.Status != models.BulkJobStatusCompleted || done.ProcessedItems != 5 {
		t.Errorf("unexpected job in notification: %+v", done)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRowsKeepsMostRecentHundredErrors(t *testing.T) {
	rec := &checkpointRecorder{}

	steps := []*queryStep{
		selectJobStep("job-1", 7, bulkJobRow("job-1", 7, "client", "processing", 150, 0, 0, nil, time.Date(2025, 11, 6, 9, 0, 0, 0, time.UTC))),
	}
	// Every row fails before any insert, so the only statements are the
	// fifteen in-loop checkpoints, the closing one, and the activity entry.
	for i := 0; i < 16; i++ {
		steps = append(steps, updateJobStep(rec.capture))
	}
	steps = append(steps, activityStep())

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	rows := make([]ParsedRow, 0, 150)
	for i := 1; i <= 150; i++ {
		rows = append(rows, ParsedRow{Index: i, Data: map[string]string{"email": fmt.Sprintf("row%d@example.com", i)}})
	}

	notify := newNotifierStub()
	processor := newBatchProcessorForTest(gormDB, notify)

	result, err := processor.ProcessRows(7, "job-1", rows, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalFailed != 150 || !result.IsComplete {
		t.Errorf("unexpected result: failed=%d complete=%v", result.TotalFailed, result.IsComplete)
	}
	for _, rowRes := range result.Results {
		if rowRes.Success || rowRes.Message != "name is required" {
			t.Fatalf("unexpected row result: %+v", rowRes)
		}
	}

	if len(rec.statuses) != 16 {
		t.Fatalf("expected 16 checkpoints, got %d", len(rec.statuses))
	}
	if rec.statuses[14] != models.BulkJobStatusProcessing {
		t.Errorf("last in-loop checkpoint should still be processing, got %q", rec.statuses[14])
	}
	if rec.statuses[15] != models.BulkJobStatusCompleted {
		t.Errorf("closing checkpoint should be completed, got %q", rec.statuses[15])
	}

	kept := rec.lastErrorList(t)
	if len(kept) != maxJobErrors {
		t.Fatalf("expected %d stored errors, got %d", maxJobErrors, len(kept))
	}
	if kept[0].RowIndex != 51 || kept[len(kept)-1].RowIndex != 150 {
		t.Errorf("expected rows 51..150 kept, got %d..%d", kept[0].RowIndex, kept[len(kept)-1].RowIndex)
	}

	notify.wait(t)
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRowsRejectsTerminalJob(t *testing.T) {
	for _, status := range []string{models.BulkJobStatusCompleted, models.BulkJobStatusFailed, models.BulkJobStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			steps := []*queryStep{
				selectJobStep("job-1", 7, bulkJobRow("job-1", 7, "client", status, 30, 10, 1, nil, nil)),
			}
			gormDB, state, cleanup := newScriptedGormDB(t, steps)
			defer cleanup()

			processor := newBatchProcessorForTest(gormDB, newNotifierStub())
			result, err := processor.ProcessRows(7, "job-1", makeClientRows(3, 11), 9)
			if !apperror.IsCode(err, apperror.CodeInvalidState) {
				t.Fatalf("expected INVALID_STATE, got %v", err)
			}
			if result != nil {
				t.Errorf("expected no result for terminal job")
			}

			if err := state.verifyComplete(); err != nil {
				t.Fatalf("%v", err)
			}
		})
	}
}

func TestProcessRowsUnknownJobTypeFailsAllRows(t *testing.T) {
	rec := &checkpointRecorder{}
	steps := []*queryStep{
		selectJobStep("job-1", 7, bulkJobRow("job-1", 7, "widget", "pending", 3, 0, 0, nil, nil)),
		updateJobStep(rec.capture),
		updateJobStep(rec.capture),
		activityStep(),
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	notify := newNotifierStub()
	processor := newBatchProcessorForTest(gormDB, notify)

	result, err := processor.ProcessRows(7, "job-1", makeClientRows(3, 1), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalFailed != 3 || !result.IsComplete {
		t.Errorf("unexpected result: failed=%d complete=%v", result.TotalFailed, result.IsComplete)
	}
	for _, rowRes := range result.Results {
		if rowRes.Success || rowRes.Message != "unknown job type" {
			t.Fatalf("unexpected row result: %+v", rowRes)
		}
	}
	if kept := rec.lastErrorList(t); len(kept) != 3 {
		t.Errorf("expected 3 stored errors, got %d", len(kept))
	}

	notify.wait(t)
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRowsAbsorbsRowFailures(t *testing.T) {
	rec := &checkpointRecorder{}
	seeded := `[{"row_index":2,"message":"earlier failure"}]`

	steps := []*queryStep{
		selectJobStep("job-1", 7, bulkJobRow("job-1", 7, "client", "processing", 10, 4, 1, seeded, time.Date(2025, 11, 6, 9, 0, 0, 0, time.UTC))),
		insertStep("clients", 201),
		insertStep("clients", 202),
		updateJobStep(rec.capture),
		activityStep(),
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	rows := []ParsedRow{
		{Index: 5, Data: map[string]string{"name": "Client 5", "email": "c5@example.com"}},
		{Index: 6, Data: map[string]string{"name": "Client 6"}},
		{Index: 7, Data: map[string]string{"name": "Client 7", "email": "c7@example.com"}},
	}

	notify := newNotifierStub()
	processor := newBatchProcessorForTest(gormDB, notify)

	result, err := processor.ProcessRows(7, "job-1", rows, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalProcessed != 7 || result.TotalFailed != 2 {
		t.Errorf("counters must carry forward: processed=%d failed=%d", result.TotalProcessed, result.TotalFailed)
	}
	if result.Results[0].RecordID != "201" || result.Results[2].RecordID != "202" {
		t.Errorf("unexpected record ids: %+v", result.Results)
	}
	if result.Results[1].Success || result.Results[1].Message != "email is required" {
		t.Errorf("expected row 6 to fail on email, got %+v", result.Results[1])
	}

	kept := rec.lastErrorList(t)
	if len(kept) != 2 {
		t.Fatalf("expected 2 stored errors, got %d", len(kept))
	}
	if kept[0].Message != "earlier failure" || kept[1].RowIndex != 6 {
		t.Errorf("expected seeded error kept and row 6 appended, got %+v", kept)
	}

	if len(notify.ch) != 0 {
		t.Errorf("incomplete job must not notify")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRowsFailsJobWhenLedgerWriteFails(t *testing.T) {
	rec := &checkpointRecorder{}
	steps := []*queryStep{
		selectJobStep("job-1", 7, bulkJobRow("job-1", 7, "client", "processing", 30, 0, 0, nil, time.Date(2025, 11, 6, 9, 0, 0, 0, time.UTC))),
	}
	for i := 0; i < 10; i++ {
		steps = append(steps, insertStep("clients", int64(401+i)))
	}
	steps = append(steps,
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `bulk_jobs` SET "),
			err:     errors.New("disk full"),
		},
		updateJobStep(rec.capture),
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	processor := newBatchProcessorForTest(gormDB, newNotifierStub())
	_, err := processor.ProcessRows(7, "job-1", makeClientRows(10, 1), 9)
	if !apperror.IsCode(err, apperror.CodeInternal) {
		t.Fatalf("expected INTERNAL, got %v", err)
	}

	if len(rec.statuses) != 1 || rec.statuses[0] != models.BulkJobStatusFailed {
		t.Fatalf("expected best-effort failed stamp, got %v", rec.statuses)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
