// Command bulk-import validates a CSV export and optionally runs it through
// the bulk import pipeline from the shell, without going through the API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
	"gbp-agency-api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		filePath   string
		importType string
		agencyID   uint
		operatorID uint
		batchSize  int
		dryRun     bool
	)

	flag.StringVar(&filePath, "file", "", "path to the CSV file to import (required)")
	flag.StringVar(&importType, "type", "", "import type: client, location, post, media or competitor (required)")
	flag.UintVar(&agencyID, "agency", 0, "agency id the rows belong to")
	flag.UintVar(&operatorID, "operator", 0, "operator id recorded as the import's creator")
	flag.IntVar(&batchSize, "batch-size", 50, "rows per processing batch")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and validate only, no database writes")
	flag.Parse()

	if filePath == "" || importType == "" {
		flag.Usage()
		os.Exit(1)
	}
	if batchSize <= 0 {
		log.Fatal("batch-size must be greater than 0")
	}

	parsedType, err := services.ParseImportType(importType)
	if err != nil {
		log.Fatalf("%v", err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("could not open %s: %v", filePath, err)
	}
	defer f.Close()

	parsed, err := services.ParseCSV(f)
	if err != nil {
		log.Fatalf("parse failed: %v", err)
	}

	summary := services.ValidateRows(parsedType, parsed.Rows)
	fmt.Printf("Parsed %d rows (%d skipped): %d valid, %d with warnings, %d with errors\n",
		len(parsed.Rows), parsed.Skipped, summary.Valid, summary.Warning, summary.Error)
	for _, w := range parsed.Warnings {
		fmt.Printf("  parse warning: %s\n", w)
	}
	for _, outcome := range summary.Outcomes {
		for _, issue := range outcome.Errors {
			fmt.Printf("  row %d: %s\n", outcome.RowIndex, issue.Message)
		}
	}

	if dryRun {
		fmt.Println("Dry run complete. No database changes were made.")
		if summary.Error > 0 {
			os.Exit(2)
		}
		return
	}

	if agencyID == 0 || operatorID == 0 {
		log.Fatal("agency and operator are required unless -dry-run is set")
	}

	config.InitDB()

	info, _ := f.Stat()
	meta := models.JobMetadata{
		FileName:    info.Name(),
		FileSize:    info.Size(),
		ValidRows:   summary.Valid,
		WarningRows: summary.Warning,
		ErrorRows:   summary.Error,
	}

	job, err := services.NewBulkJobService(nil).CreateJob(&services.CreateJobInput{
		AgencyID:  agencyID,
		Type:      parsedType,
		TotalRows: len(parsed.Rows),
		CreatedBy: operatorID,
		Metadata:  meta,
	})
	if err != nil {
		log.Fatalf("could not create job: %v", err)
	}
	fmt.Printf("Job %s created (%d rows)\n", job.ID, job.TotalItems)

	processor := services.NewBatchProcessor(nil)
	totalFailed := 0
	for start := 0; start < len(parsed.Rows); start += batchSize {
		end := start + batchSize
		if end > len(parsed.Rows) {
			end = len(parsed.Rows)
		}

		result, err := processor.ProcessRows(agencyID, job.ID, parsed.Rows[start:end], operatorID)
		if err != nil {
			log.Fatalf("batch starting at row %d failed: %v", parsed.Rows[start].Index, err)
		}
		totalFailed = result.TotalFailed
		fmt.Printf("Processed %d/%d rows (%d failed)\n",
			result.TotalProcessed, job.TotalItems, result.TotalFailed)
	}

	fmt.Printf("Import finished: %d imported, %d failed\n",
		job.TotalItems-totalFailed, totalFailed)
	if totalFailed > 0 {
		os.Exit(2)
	}
}
