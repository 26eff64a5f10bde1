package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gbp-agency-api/config"
	"gbp-agency-api/middleware"
	"gbp-agency-api/models"
	"gbp-agency-api/services"
)

// GetMedia lists media assets, filterable by location and category.
func GetMedia(c *gin.Context) {
	query := config.DB.Where("agency_id = ?", middleware.AgencyID(c))
	if locationID := c.Query("location_id"); locationID != "" {
		query = query.Where("location_id = ?", locationID)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var assets []models.MediaAsset
	if err := query.Order("created_at DESC").Find(&assets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch media", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": assets, "count": len(assets)})
}

type createMediaRequest struct {
	LocationID  uint    `json:"location_id" binding:"required"`
	URL         string  `json:"url" binding:"required,url"`
	Category    string  `json:"category" binding:"omitempty,oneof=photo logo cover interior exterior team product"`
	Description *string `json:"description"`
}

func CreateMedia(c *gin.Context) {
	var req createMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "INVALID_INPUT"})
		return
	}

	agencyID := middleware.AgencyID(c)

	var locationCount int64
	config.DB.Model(&models.Location{}).Where("id = ? AND agency_id = ?", req.LocationID, agencyID).Count(&locationCount)
	if locationCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Location not found", "code": "NOT_FOUND"})
		return
	}

	asset := models.MediaAsset{
		AgencyID:    agencyID,
		LocationID:  req.LocationID,
		URL:         req.URL,
		Category:    models.MediaCategoryPhoto,
		Description: req.Description,
		CreatedBy:   middleware.OperatorID(c),
	}
	if req.Category != "" {
		asset.Category = req.Category
	}

	if err := config.DB.Create(&asset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create media asset", "code": "INTERNAL"})
		return
	}

	services.NewActivityService(nil).Record(agencyID, asset.CreatedBy, "media.create", "media", strconv.FormatUint(uint64(asset.ID), 10), nil)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": asset})
}
