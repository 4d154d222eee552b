package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/communityos/community-platform/shared/config"
	"github.com/communityos/community-platform/shared/middleware"
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

	// Initialize Redis for the denylist cache used by the auth gate
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, caching disabled: %v", err)
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(db, appConfig)

	// Initialize service clients
	serviceClients := &ServiceClients{
		AuthService:      NewServiceClient(getEnv("AUTH_SERVICE_URL", "http://localhost:8001")),
		CommunityService: NewServiceClient(getEnv("COMMUNITY_SERVICE_URL", "http://localhost:8002")),
		PagesService:     NewServiceClient(getEnv("PAGES_SERVICE_URL", "http://localhost:8003")),
		SyncService:      NewServiceClient(getEnv("SYNC_SERVICE_URL", "http://localhost:8004")),
		RendererService:  NewServiceClient(getEnv("RENDERER_SERVICE_URL", "http://localhost:8005")),
	}

	// Initialize Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Expose-Headers", "Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "API Gateway is healthy", nil)
	})

	// Authentication routes
	auth := router.Group("/auth")
	{
		auth.POST("/sign_up", serviceClients.AuthService.ProxyRequest)
		auth.POST("/sign_in", serviceClients.AuthService.ProxyRequest)
		auth.DELETE("/sign_out", authMiddleware.RequireAuth(), serviceClients.AuthService.ProxyRequest)
	}

	// User management routes (admin only)
	users := router.Group("/users")
	users.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		users.GET("/", serviceClients.AuthService.ProxyRequest)
		users.GET("/:id", serviceClients.AuthService.ProxyRequest)
		users.PUT("/:id", serviceClients.AuthService.ProxyRequest)
		users.DELETE("/:id", serviceClients.AuthService.ProxyRequest)
	}

	// Public tenant resolution and page fetch
	router.GET("/communities/by-domain", serviceClients.CommunityService.ProxyRequest)
	router.GET("/communities/:id/content_pages/active", serviceClients.PagesService.ProxyRequest)
	router.GET("/communities/:id/content_pages/by-endpoint", serviceClients.PagesService.ProxyRequest)

	// Public rendered pages
	router.GET("/render", serviceClients.RendererService.ProxyRequest)
	router.GET("/render/page", serviceClients.RendererService.ProxyRequest)

	// Community management routes
	communities := router.Group("/communities")
	communities.Use(authMiddleware.RequireAuth())
	{
		// Platform management (admin only)
		communities.POST("/", authMiddleware.RequireAdmin(), serviceClients.CommunityService.ProxyRequest)
		communities.GET("/", authMiddleware.RequireAdmin(), serviceClients.CommunityService.ProxyRequest)
		communities.DELETE("/:id", authMiddleware.RequireAdmin(), serviceClients.CommunityService.ProxyRequest)

		// Community-scoped routes
		scoped := communities.Group("/:id")
		scoped.Use(authMiddleware.RequireCommunityAccess())
		{
			scoped.GET("", serviceClients.CommunityService.ProxyRequest)
			scoped.PUT("", serviceClients.CommunityService.ProxyRequest)
			scoped.GET("/users", serviceClients.CommunityService.ProxyRequest)

			scoped.GET("/marketplace_configuration", serviceClients.CommunityService.ProxyRequest)
			scoped.PUT("/marketplace_configuration", serviceClients.CommunityService.ProxyRequest)
			scoped.GET("/landing_page", serviceClients.CommunityService.ProxyRequest)
			scoped.PUT("/landing_page", serviceClients.CommunityService.ProxyRequest)
			scoped.GET("/topbar", serviceClients.CommunityService.ProxyRequest)
			scoped.PUT("/topbar", serviceClients.CommunityService.ProxyRequest)
			scoped.GET("/footer", serviceClients.CommunityService.ProxyRequest)
			scoped.PUT("/footer", serviceClients.CommunityService.ProxyRequest)

			scoped.GET("/contacts", serviceClients.CommunityService.ProxyRequest)
			scoped.POST("/contacts", serviceClients.CommunityService.ProxyRequest)
			scoped.DELETE("/contacts/:contact_id", serviceClients.CommunityService.ProxyRequest)

			scoped.GET("/translations", serviceClients.CommunityService.ProxyRequest)
			scoped.POST("/translations", serviceClients.CommunityService.ProxyRequest)
			scoped.PUT("/translations/:translation_id", serviceClients.CommunityService.ProxyRequest)
			scoped.DELETE("/translations/:translation_id", serviceClients.CommunityService.ProxyRequest)

			scoped.GET("/content_pages", serviceClients.PagesService.ProxyRequest)
			scoped.POST("/content_pages", serviceClients.PagesService.ProxyRequest)
			scoped.GET("/content_pages/:page_id", serviceClients.PagesService.ProxyRequest)
			scoped.PUT("/content_pages/:page_id", serviceClients.PagesService.ProxyRequest)
			scoped.DELETE("/content_pages/:page_id", serviceClients.PagesService.ProxyRequest)

			scoped.POST("/assets", serviceClients.PagesService.ProxyRequest)
		}
	}

	// Sync observability (admin only)
	sync := router.Group("/sync")
	sync.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		sync.GET("/status", serviceClients.SyncService.ProxyRequest)
		sync.GET("/failed", serviceClients.SyncService.ProxyRequest)
	}

	// Start server
	port := os.Getenv("API_GATEWAY_PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("API Gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start API Gateway:", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
