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

// GoogleController bundles the Google-facing handlers around one shared
// profile client. The client (with its rate limiter and token cache) is
// built once in main and injected here rather than living as package state.
type GoogleController struct {
	client *services.GoogleProfileClient
	sync   *services.GBPSyncService
	vault  *services.TokenVault
}

func NewGoogleController(client *services.GoogleProfileClient, sync *services.GBPSyncService, vault *services.TokenVault) *GoogleController {
	return &GoogleController{client: client, sync: sync, vault: vault}
}

// Status reports whether the agency has a live Google connection.
func (g *GoogleController) Status(c *gin.Context) {
	var conn models.GoogleConnection
	err := config.DB.Where("agency_id = ? AND revoked_at IS NULL", middleware.AgencyID(c)).First(&conn).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "connected": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"connected":    true,
		"google_email": conn.GoogleEmail,
		"scopes":       conn.Scopes,
		"connected_at": conn.ConnectedAt,
	})
}

type connectGoogleRequest struct {
	GoogleEmail  string `json:"google_email" binding:"required,email"`
	RefreshToken string `json:"refresh_token" binding:"required"`
	Scopes       string `json:"scopes"`
}

// Connect stores the refresh token handed back by the OAuth consent flow.
// The token is sealed before it touches the database.
func (g *GoogleController) Connect(c *gin.Context) {
	var req connectGoogleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "INVALID_INPUT"})
		return
	}

	sealed, err := g.vault.Seal(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	agencyID := middleware.AgencyID(c)
	conn := models.GoogleConnection{
		AgencyID:     agencyID,
		GoogleEmail:  req.GoogleEmail,
		RefreshToken: sealed,
		Scopes:       req.Scopes,
		ConnectedBy:  middleware.OperatorID(c),
	}

	// One connection per agency: replace an existing grant in place.
	var existing models.GoogleConnection
	if err := config.DB.Where("agency_id = ?", agencyID).First(&existing).Error; err == nil {
		conn.ID = existing.ID
		conn.ConnectedAt = existing.ConnectedAt
		if err := config.DB.Save(&conn).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to store connection", "code": "INTERNAL"})
			return
		}
	} else if err := config.DB.Create(&conn).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to store connection", "code": "INTERNAL"})
		return
	}

	services.NewActivityService(nil).Record(agencyID, middleware.OperatorID(c), "google.connect", "google_connection", strconv.FormatUint(uint64(conn.ID), 10), nil)
	c.JSON(http.StatusCreated, gin.H{"success": true, "connected": true, "google_email": conn.GoogleEmail})
}

// SyncLocation pulls the live Google profile into one location row.
func (g *GoogleController) SyncLocation(c *gin.Context) {
	locationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid location id", "code": "INVALID_INPUT"})
		return
	}

	result, err := g.sync.SyncLocation(c.Request.Context(), middleware.AgencyID(c), uint(locationID), middleware.OperatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// SyncAgency refreshes every linked location for the agency.
func (g *GoogleController) SyncAgency(c *gin.Context) {
	results, err := g.sync.SyncAgency(c.Request.Context(), middleware.AgencyID(c), middleware.OperatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	synced, skipped := 0, 0
	for _, r := range results {
		if r.Synced {
			synced++
		}
		if r.Skipped {
			skipped++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"synced":  synced,
		"skipped": skipped,
		"total":   len(results),
		"results": results,
	})
}
