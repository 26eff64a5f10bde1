package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"gbp-agency-api/apperror"
	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

// syncConcurrency bounds how many locations are pulled from Google at once.
// The client's rate limiter throttles below this anyway; the bound keeps
// goroutine count sane for agencies with hundreds of locations.
const syncConcurrency = 4

type SyncResult struct {
	LocationID uint     `json:"location_id"`
	Synced     bool     `json:"synced"`
	Skipped    bool     `json:"skipped,omitempty"`
	Message    string   `json:"message,omitempty"`
	Changes    []string `json:"changes,omitempty"`
}

// GBPSyncService refreshes local location rows from the live Google
// Business Profile data.
type GBPSyncService struct {
	db       *gorm.DB
	client   *GoogleProfileClient
	activity *ActivityService
}

func NewGBPSyncService(db *gorm.DB, client *GoogleProfileClient) *GBPSyncService {
	if db == nil {
		db = config.DB
	}
	return &GBPSyncService{db: db, client: client, activity: NewActivityService(db)}
}

// SyncLocation pulls the live profile for one location and folds it into
// the local row. Locations that were never linked to a Google resource
// cannot be synced.
func (s *GBPSyncService) SyncLocation(ctx context.Context, agencyID, locationID uint, actorID uint) (*SyncResult, error) {
	var location models.Location
	err := s.db.Where("id = ? AND agency_id = ?", locationID, agencyID).First(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Newf(apperror.CodeNotFound, "location %d not found", locationID)
	}
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}

	result := &SyncResult{LocationID: location.ID}
	if location.GoogleName == nil || *location.GoogleName == "" {
		result.Skipped = true
		result.Message = "location is not linked to a Google profile"
		return result, nil
	}

	remote, err := s.client.FetchLocation(ctx, agencyID, *location.GoogleName)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not reach Google Business Profile")
	}

	result.Changes = s.applyRemote(&location, remote)
	now := time.Now()
	location.LastSyncedAt = &now

	if err := s.db.Save(&location).Error; err != nil {
		return nil, fmt.Errorf("save synced location: %w", err)
	}

	result.Synced = true
	s.activity.Record(agencyID, actorID, "google.sync", "location", formatID(location.ID), map[string]any{
		"changes": result.Changes,
	})
	return result, nil
}

// applyRemote folds the remote profile into the row, returning which fields
// moved. Remote values win; empty remote fields leave local data alone.
func (s *GBPSyncService) applyRemote(location *models.Location, remote *GoogleLocation) []string {
	var changes []string

	if remote.Title != "" && remote.Title != location.Name {
		location.Name = remote.Title
		changes = append(changes, "name")
	}
	if remote.PhoneNumbers.PrimaryPhone != "" {
		if location.Phone == nil || *location.Phone != remote.PhoneNumbers.PrimaryPhone {
			phone := remote.PhoneNumbers.PrimaryPhone
			location.Phone = &phone
			changes = append(changes, "phone")
		}
	}
	if cat := remote.Categories.PrimaryCategory.DisplayName; cat != "" {
		if location.PrimaryCategory == nil || *location.PrimaryCategory != cat {
			location.PrimaryCategory = &cat
			changes = append(changes, "primary_category")
		}
	}
	if remote.LatLng.Latitude != 0 || remote.LatLng.Longitude != 0 {
		if location.Latitude == nil || location.Longitude == nil ||
			*location.Latitude != remote.LatLng.Latitude || *location.Longitude != remote.LatLng.Longitude {
			lat, lng := remote.LatLng.Latitude, remote.LatLng.Longitude
			location.Latitude = &lat
			location.Longitude = &lng
			changes = append(changes, "coordinates")
		}
	}
	if remote.Metadata.PlaceID != "" {
		if location.PlaceID == nil || *location.PlaceID != remote.Metadata.PlaceID {
			placeID := remote.Metadata.PlaceID
			location.PlaceID = &placeID
			changes = append(changes, "place_id")
		}
	}
	return changes
}

// SyncAgency refreshes every linked location of the agency, a few at a
// time. Unlinked locations are counted as skipped rather than failing the
// run.
func (s *GBPSyncService) SyncAgency(ctx context.Context, agencyID, actorID uint) ([]SyncResult, error) {
	var locations []models.Location
	if err := s.db.Where("agency_id = ?", agencyID).Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	results := make([]SyncResult, len(locations))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)

	for i, location := range locations {
		g.Go(func() error {
			res, err := s.SyncLocation(ctx, agencyID, location.ID, actorID)
			if err != nil {
				config.Logger.Warn("location sync failed",
					zap.Uint("location_id", location.ID),
					zap.Error(err))
				results[i] = SyncResult{LocationID: location.ID, Message: "sync failed"}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
