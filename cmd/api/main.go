package main

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gbp-agency-api/config"
	"gbp-agency-api/controllers"
	"gbp-agency-api/middleware"
	"gbp-agency-api/monitor"
	"gbp-agency-api/routes"
	"gbp-agency-api/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Not fatal: containers and CI pass configuration as real env vars.
	}

	logFile := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	defer config.Logger.Sync()

	// Initialize database
	config.InitDB()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(middleware.RequestLogger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Add per-IP rate limiting
	rps, _ := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if rps <= 0 {
		rps = 20
	}
	router.Use(middleware.NewRateLimiter(rps, int(rps)*2).Middleware())

	// Ops status and log routes (token guarded)
	monitor.RegisterOpsRoutes(router)

	// The Google side holds process-wide state (token cache, outbound rate
	// limiter), so it is built once here and handed to its controller.
	vault, err := services.NewTokenVault()
	if err != nil {
		config.Logger.Fatal("token vault init failed", zap.Error(err))
	}
	gbpClient := services.NewGoogleProfileClient(nil, vault, nil)
	syncService := services.NewGBPSyncService(nil, gbpClient)
	googleController := controllers.NewGoogleController(gbpClient, syncService, vault)

	// Setup routes
	routes.SetupRoutes(router, googleController)

	// Create upload directory if not exists
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		config.Logger.Warn("failed to create upload directory", zap.Error(err))
	}

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	config.Logger.Info("server starting",
		zap.String("port", port),
		zap.String("mode", ginMode))

	if err := router.Run(":" + port); err != nil {
		config.Logger.Fatal("failed to start server", zap.Error(err))
	}
}
