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

	// Application config (JWT secret, token TTL) is immutable after startup.
	appConfig, err := config.LoadApp()
	if err != nil {
		log.Fatal("Failed to load application config:", err)
	}

	// Initialize Redis for the token denylist cache
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, denylist cache disabled: %v", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.DenylistedToken{}); err != nil {
		log.Fatal("Failed to migrate auth tables:", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(db, appConfig)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Auth service is healthy", nil)
	})

	// Authentication routes
	auth := router.Group("/auth")
	{
		auth.POST("/sign_up", handleSignUp(db, appConfig))
		auth.POST("/sign_in", handleSignIn(db, appConfig))
		auth.DELETE("/sign_out", authMiddleware.RequireAuth(), handleSignOut(db))
	}

	// User management routes (admin only)
	users := router.Group("/users")
	users.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		users.GET("/", handleGetUsers(db))
		users.GET("/:id", handleGetUser(db))
		users.PUT("/:id", handleUpdateUser(db))
		users.DELETE("/:id", handleDeleteUser(db))
	}

	// Start server
	port := os.Getenv("AUTH_SERVICE_PORT")
	if port == "" {
		port = "8001"
	}

	logrus.Infof("Auth service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start auth service:", err)
	}
}
