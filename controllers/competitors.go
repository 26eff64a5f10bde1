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

// GetCompetitors lists tracked competitors, filterable by location.
func GetCompetitors(c *gin.Context) {
	query := config.DB.Where("agency_id = ?", middleware.AgencyID(c))
	if locationID := c.Query("location_id"); locationID != "" {
		query = query.Where("location_id = ?", locationID)
	}

	var competitors []models.Competitor
	if err := query.Order("name ASC").Find(&competitors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch competitors", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": competitors, "count": len(competitors)})
}

type createCompetitorRequest struct {
	LocationID uint    `json:"location_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	PlaceID    *string `json:"place_id"`
	Website    *string `json:"website" binding:"omitempty,url"`
	Notes      *string `json:"notes"`
}

func CreateCompetitor(c *gin.Context) {
	var req createCompetitorRequest
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

	competitor := models.Competitor{
		AgencyID:   agencyID,
		LocationID: req.LocationID,
		Name:       req.Name,
		PlaceID:    req.PlaceID,
		Website:    req.Website,
		Notes:      req.Notes,
		CreatedBy:  middleware.OperatorID(c),
	}

	if err := config.DB.Create(&competitor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create competitor", "code": "INTERNAL"})
		return
	}

	services.NewActivityService(nil).Record(agencyID, competitor.CreatedBy, "competitor.create", "competitor", strconv.FormatUint(uint64(competitor.ID), 10), nil)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": competitor})
}
