package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gbp-agency-api/config"
	"gbp-agency-api/middleware"
	"gbp-agency-api/models"
	"gbp-agency-api/services"
)

// GetDashboardStats returns the counts and recent activity the dashboard
// landing page shows.
func GetDashboardStats(c *gin.Context) {
	agencyID := middleware.AgencyID(c)

	var clients, locations, posts, scheduledPosts, media, competitors int64
	config.DB.Model(&models.Client{}).Where("agency_id = ?", agencyID).Count(&clients)
	config.DB.Model(&models.Location{}).Where("agency_id = ?", agencyID).Count(&locations)
	config.DB.Model(&models.Post{}).Where("agency_id = ?", agencyID).Count(&posts)
	config.DB.Model(&models.Post{}).Where("agency_id = ? AND status = ?", agencyID, models.PostStatusScheduled).Count(&scheduledPosts)
	config.DB.Model(&models.MediaAsset{}).Where("agency_id = ?", agencyID).Count(&media)
	config.DB.Model(&models.Competitor{}).Where("agency_id = ?", agencyID).Count(&competitors)

	recentJobs, err := services.NewBulkJobService(nil).ListJobs(agencyID, 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch dashboard stats", "code": "INTERNAL"})
		return
	}
	jobs := make([]gin.H, 0, len(recentJobs))
	for i := range recentJobs {
		jobs = append(jobs, jobStatusPayload(&recentJobs[i]))
	}

	activity, err := services.NewActivityService(nil).Recent(agencyID, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch dashboard stats", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"clients":         clients,
			"locations":       locations,
			"posts":           posts,
			"scheduled_posts": scheduledPosts,
			"media_assets":    media,
			"competitors":     competitors,
			"recent_jobs":     jobs,
			"recent_activity": activity,
		},
	})
}
