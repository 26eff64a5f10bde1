package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gbp-agency-api/apperror"
	"gbp-agency-api/config"
)

// respondError maps service errors onto the wire. Anything without an app
// code is logged server-side and surfaces as a generic internal error so
// driver and SQL details never leak to callers.
func respondError(c *gin.Context, err error) {
	if appErr := apperror.From(err); appErr != nil {
		if appErr.Code == apperror.CodeInternal {
			config.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(appErr.HTTPStatus(), gin.H{"success": false, "error": appErr.Message, "code": string(appErr.Code)})
		return
	}

	config.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "code": string(apperror.CodeInternal)})
}
