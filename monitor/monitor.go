// Package monitor exposes token-guarded operational routes: a JSON status
// snapshot and the tail of the backend log.
package monitor

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

var startedAt = time.Now()

// maxLogTailBytes bounds how much of the log file one request returns.
const maxLogTailBytes = 64 * 1024

func authorized(c *gin.Context) bool {
	token := os.Getenv("MONITOR_TOKEN")
	if token == "" {
		// No token configured means the ops routes are disabled outright.
		c.JSON(404, gin.H{"error": "Not found"})
		return false
	}
	if c.Query("token") != token {
		c.JSON(401, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}

// RegisterOpsRoutes wires /ops/status and /ops/logs onto the router.
func RegisterOpsRoutes(router *gin.Engine) {
	router.GET("/ops/status", func(c *gin.Context) {
		if !authorized(c) {
			return
		}

		dbOK := false
		if config.DB != nil {
			if sqlDB, err := config.DB.DB(); err == nil && sqlDB.Ping() == nil {
				dbOK = true
			}
		}

		type statusCount struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		}
		var jobCounts []statusCount
		if dbOK {
			config.DB.Model(&models.BulkJob{}).
				Select("status, COUNT(*) AS count").
				Where("created_at >= ?", time.Now().Add(-24*time.Hour)).
				Group("status").
				Scan(&jobCounts)
		}

		c.JSON(200, gin.H{
			"status":         "ok",
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
			"database":       dbOK,
			"jobs_last_24h":  jobCounts,
		})
	})

	router.GET("/ops/logs", func(c *gin.Context) {
		if !authorized(c) {
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}
		if len(logData) > maxLogTailBytes {
			logData = logData[len(logData)-maxLogTailBytes:]
		}
		c.Data(200, "text/plain; charset=utf-8", logData)
	})
}
