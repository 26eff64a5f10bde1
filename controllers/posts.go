package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gbp-agency-api/config"
	"gbp-agency-api/middleware"
	"gbp-agency-api/models"
	"gbp-agency-api/services"
)

// GetPosts lists posts for the agency, filterable by location and status.
func GetPosts(c *gin.Context) {
	query := config.DB.Where("agency_id = ?", middleware.AgencyID(c))
	if locationID := c.Query("location_id"); locationID != "" {
		query = query.Where("location_id = ?", locationID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var posts []models.Post
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch posts", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": posts, "count": len(posts)})
}

type createPostRequest struct {
	LocationID  uint       `json:"location_id" binding:"required"`
	Title       *string    `json:"title"`
	Content     string     `json:"content" binding:"required,max=1500"`
	ContentType string     `json:"content_type" binding:"omitempty,oneof=update offer event"`
	CTAURL      *string    `json:"cta_url" binding:"omitempty,url"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func CreatePost(c *gin.Context) {
	var req createPostRequest
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

	post := models.Post{
		AgencyID:    agencyID,
		LocationID:  req.LocationID,
		Title:       req.Title,
		Content:     req.Content,
		ContentType: models.PostTypeUpdate,
		CTAURL:      req.CTAURL,
		Status:      models.PostStatusDraft,
		ScheduledAt: req.ScheduledAt,
		CreatedBy:   middleware.OperatorID(c),
	}
	if req.ContentType != "" {
		post.ContentType = req.ContentType
	}
	if req.ScheduledAt != nil {
		post.Status = models.PostStatusScheduled
	}

	if err := config.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create post", "code": "INTERNAL"})
		return
	}

	services.NewActivityService(nil).Record(agencyID, post.CreatedBy, "post.create", "post", strconv.FormatUint(uint64(post.ID), 10), nil)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post})
}

type draftPostRequest struct {
	LocationID  uint   `json:"location_id" binding:"required"`
	Topic       string `json:"topic" binding:"required"`
	Tone        string `json:"tone"`
	ContentType string `json:"content_type" binding:"omitempty,oneof=update offer event"`
}

// DraftPost asks the content drafter for post copy. Nothing is persisted;
// the operator reviews the text and creates the post themselves.
func DraftPost(c *gin.Context) {
	var req draftPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "INVALID_INPUT"})
		return
	}

	var location models.Location
	err := config.DB.Preload("Client").
		Where("id = ? AND agency_id = ?", req.LocationID, middleware.AgencyID(c)).
		First(&location).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Location not found", "code": "NOT_FOUND"})
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = models.PostTypeUpdate
	}
	tone := req.Tone
	if tone == "" {
		tone = "friendly and professional"
	}

	draft, err := services.NewOpenAIDrafter().Draft(c.Request.Context(), services.DraftRequest{
		BusinessName: location.Name,
		Topic:        req.Topic,
		Tone:         tone,
		ContentType:  contentType,
	})
	if err != nil {
		config.Logger.Error("post draft failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Draft service unavailable", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "draft": draft, "content_type": contentType})
}
