package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"gbp-agency-api/models"
	"gbp-agency-api/utils"
)

// The inserters re-check required fields so a caller that submits rows the
// validator flagged still gets a per-row failure instead of a half-written
// record. Parent lookups are agency-scoped; an id from another tenant reads
// as not found.

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func requireField(row map[string]string, name string) (string, error) {
	v := strings.TrimSpace(row[name])
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

func resolveClient(db *gorm.DB, agencyID uint, raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("client_id must be a positive number")
	}
	var count int64
	if err := db.Model(&models.Client{}).Where("id = ? AND agency_id = ?", id, agencyID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("could not verify client: %w", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("client %d not found", id)
	}
	return uint(id), nil
}

func resolveLocation(db *gorm.DB, agencyID uint, raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("location_id must be a positive number")
	}
	var count int64
	if err := db.Model(&models.Location{}).Where("id = ? AND agency_id = ?", id, agencyID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("could not verify location: %w", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("location %d not found", id)
	}
	return uint(id), nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func insertClientRow(db *gorm.DB, agencyID, actorID uint, row map[string]string) (string, error) {
	name, err := requireField(row, "name")
	if err != nil {
		return "", err
	}
	email, err := requireField(row, "email")
	if err != nil {
		return "", err
	}

	client := models.Client{
		AgencyID:    agencyID,
		Name:        name,
		Email:       email,
		Phone:       optionalString(row["phone"]),
		Website:     optionalString(row["website"]),
		ContactName: optionalString(row["contact_name"]),
		PackageTier: models.PackageTierStarter,
		Notes:       optionalString(row["notes"]),
		CreatedBy:   actorID,
	}
	if tier := strings.ToLower(strings.TrimSpace(row["package_tier"])); tier != "" {
		client.PackageTier = tier
	}

	if err := db.Create(&client).Error; err != nil {
		return "", fmt.Errorf("could not create client: %w", err)
	}
	return formatID(client.ID), nil
}

func insertLocationRow(db *gorm.DB, agencyID, actorID uint, row map[string]string) (string, error) {
	clientRaw, err := requireField(row, "client_id")
	if err != nil {
		return "", err
	}
	name, err := requireField(row, "name")
	if err != nil {
		return "", err
	}
	address, err := requireField(row, "address")
	if err != nil {
		return "", err
	}
	clientID, err := resolveClient(db, agencyID, clientRaw)
	if err != nil {
		return "", err
	}

	location := models.Location{
		AgencyID:        agencyID,
		ClientID:        clientID,
		Name:            name,
		Address:         address,
		City:            optionalString(row["city"]),
		State:           optionalString(row["state"]),
		PostalCode:      optionalString(row["postal_code"]),
		Country:         optionalString(row["country"]),
		Phone:           optionalString(row["phone"]),
		PlaceID:         optionalString(row["place_id"]),
		PrimaryCategory: optionalString(row["primary_category"]),
		CreatedBy:       actorID,
	}
	if raw := strings.TrimSpace(row["latitude"]); raw != "" {
		lat, ok := utils.ParseCoordinate(raw)
		if !ok {
			return "", errors.New("latitude must be numeric")
		}
		location.Latitude = &lat
	}
	if raw := strings.TrimSpace(row["longitude"]); raw != "" {
		lng, ok := utils.ParseCoordinate(raw)
		if !ok {
			return "", errors.New("longitude must be numeric")
		}
		location.Longitude = &lng
	}

	if err := db.Create(&location).Error; err != nil {
		return "", fmt.Errorf("could not create location: %w", err)
	}
	return formatID(location.ID), nil
}

func insertPostRow(db *gorm.DB, agencyID, actorID uint, row map[string]string) (string, error) {
	locationRaw, err := requireField(row, "location_id")
	if err != nil {
		return "", err
	}
	content, err := requireField(row, "content")
	if err != nil {
		return "", err
	}
	locationID, err := resolveLocation(db, agencyID, locationRaw)
	if err != nil {
		return "", err
	}

	post := models.Post{
		AgencyID:    agencyID,
		LocationID:  locationID,
		Title:       optionalString(row["title"]),
		Content:     content,
		ContentType: models.PostTypeUpdate,
		CTAURL:      optionalString(row["cta_url"]),
		Status:      models.PostStatusDraft,
		CreatedBy:   actorID,
	}
	if ct := strings.ToLower(strings.TrimSpace(row["content_type"])); ct != "" {
		post.ContentType = ct
	}
	// A schedule timestamp decides the initial status: rows with one arrive
	// ready to go out, rows without one land as drafts.
	if raw := strings.TrimSpace(row["scheduled_at"]); raw != "" {
		at, ok := utils.ParseFlexibleDate(raw)
		if !ok {
			return "", errors.New("scheduled_at is not a recognizable date")
		}
		post.ScheduledAt = &at
		post.Status = models.PostStatusScheduled
	}

	if err := db.Create(&post).Error; err != nil {
		return "", fmt.Errorf("could not create post: %w", err)
	}
	return formatID(post.ID), nil
}

func insertMediaRow(db *gorm.DB, agencyID, actorID uint, row map[string]string) (string, error) {
	locationRaw, err := requireField(row, "location_id")
	if err != nil {
		return "", err
	}
	url, err := requireField(row, "url")
	if err != nil {
		return "", err
	}
	locationID, err := resolveLocation(db, agencyID, locationRaw)
	if err != nil {
		return "", err
	}

	asset := models.MediaAsset{
		AgencyID:    agencyID,
		LocationID:  locationID,
		URL:         url,
		Category:    models.MediaCategoryPhoto,
		Description: optionalString(row["description"]),
		CreatedBy:   actorID,
	}
	if cat := strings.ToLower(strings.TrimSpace(row["category"])); cat != "" {
		asset.Category = cat
	}

	if err := db.Create(&asset).Error; err != nil {
		return "", fmt.Errorf("could not create media asset: %w", err)
	}
	return formatID(asset.ID), nil
}

func insertCompetitorRow(db *gorm.DB, agencyID, actorID uint, row map[string]string) (string, error) {
	locationRaw, err := requireField(row, "location_id")
	if err != nil {
		return "", err
	}
	name, err := requireField(row, "name")
	if err != nil {
		return "", err
	}
	locationID, err := resolveLocation(db, agencyID, locationRaw)
	if err != nil {
		return "", err
	}

	competitor := models.Competitor{
		AgencyID:   agencyID,
		LocationID: locationID,
		Name:       name,
		PlaceID:    optionalString(row["place_id"]),
		Website:    optionalString(row["website"]),
		Notes:      optionalString(row["notes"]),
		CreatedBy:  actorID,
	}

	if err := db.Create(&competitor).Error; err != nil {
		return "", fmt.Errorf("could not create competitor: %w", err)
	}
	return formatID(competitor.ID), nil
}
