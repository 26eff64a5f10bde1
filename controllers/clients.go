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

// GetClients lists the agency's clients, optionally filtered by package
// tier or a name search.
func GetClients(c *gin.Context) {
	agencyID := middleware.AgencyID(c)

	query := config.DB.Where("agency_id = ?", agencyID)
	if tier := c.Query("package_tier"); tier != "" {
		query = query.Where("package_tier = ?", tier)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var clients []models.Client
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch clients", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": clients, "count": len(clients)})
}

type createClientRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website" binding:"omitempty,url"`
	ContactName *string `json:"contact_name"`
	PackageTier string  `json:"package_tier" binding:"omitempty,oneof=starter professional enterprise"`
	Notes       *string `json:"notes"`
}

func CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "INVALID_INPUT"})
		return
	}

	client := models.Client{
		AgencyID:    middleware.AgencyID(c),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		ContactName: req.ContactName,
		PackageTier: models.PackageTierStarter,
		Notes:       req.Notes,
		CreatedBy:   middleware.OperatorID(c),
	}
	if req.PackageTier != "" {
		client.PackageTier = req.PackageTier
	}

	if err := config.DB.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create client", "code": "INTERNAL"})
		return
	}

	services.NewActivityService(nil).Record(client.AgencyID, client.CreatedBy, "client.create", "client", strconv.FormatUint(uint64(client.ID), 10), nil)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": client})
}

func GetClient(c *gin.Context) {
	var client models.Client
	err := config.DB.Where("id = ? AND agency_id = ?", c.Param("id"), middleware.AgencyID(c)).First(&client).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Client not found", "code": "NOT_FOUND"})
		return
	}

	var locationCount int64
	config.DB.Model(&models.Location{}).Where("client_id = ?", client.ID).Count(&locationCount)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": client, "location_count": locationCount})
}
