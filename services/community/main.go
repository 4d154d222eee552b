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

	// Initialize Redis for by-domain lookup caching
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, caching disabled: %v", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = db.AutoMigrate(
		&models.Community{},
		&models.MarketplaceConfiguration{},
		&models.LandingPage{},
		&models.Topbar{},
		&models.Footer{},
		&models.Contact{},
		&models.Translation{},
	)
	if err != nil {
		log.Fatal("Failed to migrate community tables:", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(db, appConfig)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Community service is healthy", nil)
	})

	// Public tenant resolution
	router.GET("/communities/by-domain", handleResolveByDomain(db))

	// Community management routes
	communities := router.Group("/communities")
	communities.Use(authMiddleware.RequireAuth())
	{
		// Platform management (admin only)
		communities.POST("/", authMiddleware.RequireAdmin(), handleCreateCommunity(db))
		communities.GET("/", authMiddleware.RequireAdmin(), handleGetCommunities(db))
		communities.DELETE("/:id", authMiddleware.RequireAdmin(), handleDeleteCommunity(db))

		// Community-scoped routes; every one of these verifies that the
		// caller belongs to the community in the path.
		scoped := communities.Group("/:id")
		scoped.Use(authMiddleware.RequireCommunityAccess())
		{
			scoped.GET("", handleGetCommunity(db))
			scoped.PUT("", handleUpdateCommunity(db))

			scoped.GET("/users", handleGetCommunityUsers(db))

			// Singleton configuration resources
			scoped.GET("/marketplace_configuration", handleGetMarketplaceConfiguration(db))
			scoped.PUT("/marketplace_configuration", handleUpdateMarketplaceConfiguration(db))
			scoped.GET("/landing_page", handleGetLandingPage(db))
			scoped.PUT("/landing_page", handleUpdateLandingPage(db))
			scoped.GET("/topbar", handleGetTopbar(db))
			scoped.PUT("/topbar", handleUpdateTopbar(db))
			scoped.GET("/footer", handleGetFooter(db))
			scoped.PUT("/footer", handleUpdateFooter(db))

			// Owned collections
			scoped.GET("/contacts", handleGetContacts(db))
			scoped.POST("/contacts", handleCreateContact(db))
			scoped.DELETE("/contacts/:contact_id", handleDeleteContact(db))

			scoped.GET("/translations", handleGetTranslations(db))
			scoped.POST("/translations", handleCreateTranslation(db))
			scoped.PUT("/translations/:translation_id", handleUpdateTranslation(db))
			scoped.DELETE("/translations/:translation_id", handleDeleteTranslation(db))
		}
	}

	// Start server
	port := os.Getenv("COMMUNITY_SERVICE_PORT")
	if port == "" {
		port = "8002"
	}

	logrus.Infof("Community service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start community service:", err)
	}
}
