package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/communityos/community-platform/shared/config"
	"github.com/communityos/community-platform/shared/middleware"
	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	appConfig, err := config.LoadApp()
	if err != nil {
		log.Fatal("Failed to load application config:", err)
	}

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&models.ContentPage{}); err != nil {
		log.Fatal("Failed to migrate pages tables:", err)
	}

	// Initialize Kafka producer for page-change events
	producer, err := NewKafkaProducer(appConfig.KafkaBroker)
	if err != nil {
		log.Fatal("Failed to initialize Kafka producer:", err)
	}
	defer producer.Close()

	// Initialize S3 uploader for page assets
	uploader, err := NewAssetUploader(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize asset uploader:", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(db, appConfig)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Pages service is healthy", nil)
	})

	// Public page fetch: only active pages are resolvable here.
	router.GET("/communities/:id/content_pages/active", handleGetActivePages(db))
	router.GET("/communities/:id/content_pages/by-endpoint", handleGetActivePageByEndpoint(db))

	// Admin page management, scoped to the caller's community.
	pages := router.Group("/communities/:id")
	pages.Use(authMiddleware.RequireAuth(), authMiddleware.RequireCommunityAccess())
	{
		pages.GET("/content_pages", handleGetPages(db))
		pages.POST("/content_pages", handleCreatePage(db, producer))
		pages.GET("/content_pages/:page_id", handleGetPage(db))
		pages.PUT("/content_pages/:page_id", handleUpdatePage(db, producer))
		pages.DELETE("/content_pages/:page_id", handleDeletePage(db, producer))

		pages.POST("/assets", handleUploadAsset(uploader))
	}

	// Start server
	port := os.Getenv("PAGES_SERVICE_PORT")
	if port == "" {
		port = "8003"
	}

	logrus.Infof("Pages service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start pages service:", err)
	}
}
