package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/communityos/community-platform/shared/config"
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

	// Initialize database connection
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Initialize revalidation client for the frontend webhook
	revalidateClient := NewRevalidateClient(appConfig.RevalidateEndpoint)

	// Initialize Kafka consumer for page-change events
	kafkaConsumer, err := NewKafkaConsumer(appConfig.KafkaBroker, db)
	if err != nil {
		log.Fatal("Failed to initialize Kafka consumer:", err)
	}
	defer kafkaConsumer.Close()

	go kafkaConsumer.ConsumePageEvents(revalidateClient)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Sync service is healthy", nil)
	})

	// Observability endpoints
	sync := router.Group("/sync")
	{
		sync.GET("/status", handleGetSyncStatus(revalidateClient))
		sync.GET("/failed", handleGetFailedDeliveries(db))
	}

	// Start server
	port := os.Getenv("SYNC_SERVICE_PORT")
	if port == "" {
		port = "8004"
	}

	logrus.Infof("Sync service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start sync service:", err)
	}
}
