// Command gbp-sync refreshes location rows from the live Google Business
// Profile data, for cron or one-off runs outside the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gbp-agency-api/config"
	"gbp-agency-api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	defer config.Logger.Sync()

	var (
		agencyID       uint
		operatorID     uint
		locationIDsRaw string
		timeoutSeconds int
	)

	flag.UintVar(&agencyID, "agency", 0, "agency id whose locations to sync (required)")
	flag.UintVar(&operatorID, "operator", 0, "operator id recorded in the activity log (optional)")
	flag.StringVar(&locationIDsRaw, "location-ids", "", "comma separated list of location IDs to sync (optional, default: all)")
	flag.IntVar(&timeoutSeconds, "timeout", 300, "overall timeout in seconds")
	flag.Parse()

	if agencyID == 0 {
		flag.Usage()
		os.Exit(1)
	}

	locationIDs, err := parseLocationIDs(locationIDsRaw)
	if err != nil {
		log.Fatalf("invalid location ids: %v", err)
	}

	config.InitDB()

	vault, err := services.NewTokenVault()
	if err != nil {
		log.Fatalf("token vault: %v", err)
	}
	client := services.NewGoogleProfileClient(nil, vault, nil)
	sync := services.NewGBPSyncService(nil, client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	var results []services.SyncResult
	if len(locationIDs) > 0 {
		for _, id := range locationIDs {
			res, err := sync.SyncLocation(ctx, agencyID, id, operatorID)
			if err != nil {
				results = append(results, services.SyncResult{LocationID: id, Message: err.Error()})
				continue
			}
			results = append(results, *res)
		}
	} else {
		results, err = sync.SyncAgency(ctx, agencyID, operatorID)
		if err != nil {
			log.Fatalf("agency sync failed: %v", err)
		}
	}

	var synced, skipped, failed int
	for _, res := range results {
		switch {
		case res.Synced:
			synced++
			if len(res.Changes) > 0 {
				fmt.Printf("location %d: updated %s\n", res.LocationID, strings.Join(res.Changes, ", "))
			} else {
				fmt.Printf("location %d: no changes\n", res.LocationID)
			}
		case res.Skipped:
			skipped++
			fmt.Printf("location %d: skipped (%s)\n", res.LocationID, res.Message)
		default:
			failed++
			fmt.Printf("location %d: failed (%s)\n", res.LocationID, res.Message)
		}
	}

	fmt.Printf("Locations synced: %d, skipped: %d, failed: %d\n", synced, skipped, failed)
	if failed > 0 {
		os.Exit(2)
	}
}

func parseLocationIDs(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id64, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id64 == 0 {
			return nil, fmt.Errorf("invalid location id '%s'", part)
		}
		ids = append(ids, uint(id64))
	}
	return ids, nil
}
