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

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Renderer service is healthy", nil)
	})

	// Public site rendering: landing page and content pages by domain.
	router.GET("/render", handleRenderLandingPage(db))
	router.GET("/render/page", handleRenderContentPage(db))

	// Start server
	port := os.Getenv("RENDERER_SERVICE_PORT")
	if port == "" {
		port = "8005"
	}

	logrus.Infof("Renderer service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start renderer service:", err)
	}
}
