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

// GetLocations lists the agency's locations, optionally for one client.
func GetLocations(c *gin.Context) {
	query := config.DB.Where("agency_id = ?", middleware.AgencyID(c))
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var locations []models.Location
	if err := query.Order("name ASC").Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch locations", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": locations, "count": len(locations)})
}

type createLocationRequest struct {
	ClientID        uint     `json:"client_id" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Address         string   `json:"address" binding:"required"`
	City            *string  `json:"city"`
	State           *string  `json:"state"`
	PostalCode      *string  `json:"postal_code"`
	Country         *string  `json:"country"`
	Phone           *string  `json:"phone"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	PlaceID         *string  `json:"place_id"`
	PrimaryCategory *string  `json:"primary_category"`
	GoogleName      *string  `json:"google_location_name"`
}

func CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "INVALID_INPUT"})
		return
	}

	agencyID := middleware.AgencyID(c)

	var clientCount int64
	config.DB.Model(&models.Client{}).Where("id = ? AND agency_id = ?", req.ClientID, agencyID).Count(&clientCount)
	if clientCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Client not found", "code": "NOT_FOUND"})
		return
	}

	location := models.Location{
		AgencyID:        agencyID,
		ClientID:        req.ClientID,
		Name:            req.Name,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Phone:           req.Phone,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		PlaceID:         req.PlaceID,
		PrimaryCategory: req.PrimaryCategory,
		GoogleName:      req.GoogleName,
		CreatedBy:       middleware.OperatorID(c),
	}

	if err := config.DB.Create(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create location", "code": "INTERNAL"})
		return
	}

	services.NewActivityService(nil).Record(agencyID, location.CreatedBy, "location.create", "location", strconv.FormatUint(uint64(location.ID), 10), nil)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": location})
}

func GetLocation(c *gin.Context) {
	var location models.Location
	err := config.DB.Preload("Client").
		Where("id = ? AND agency_id = ?", c.Param("id"), middleware.AgencyID(c)).
		First(&location).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Location not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": location})
}
