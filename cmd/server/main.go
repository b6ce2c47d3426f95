package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"learnhub/config"
	"learnhub/db"
	"learnhub/internal/leaderboard"
	"learnhub/middlewares"
	"learnhub/routes"
	"learnhub/services"
	"learnhub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	services.InitGamificationService(services.NewMongoStore())

	// Seed the static badge catalog; safe to run on every startup
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = services.GetGamificationService().InitializeBadgeCatalog(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to seed badge catalog: %v", err)
	}

	// Leaderboard cache is optional
	if cfg.Redis.Addr != "" {
		if err := leaderboard.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("Redis unavailable, leaderboard cache disabled: %v", err)
		} else {
			log.Println("Connected to Redis")
		}
	}

	if err := middlewares.InitCasbin(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to initialize RBAC: %v", err)
	}

	router := setupRouter(cfg)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	origins := cfg.CORS.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Authenticated routes
	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware(cfg.JWT.Secret))
	{
		auth.POST("/gamification/award", routes.AwardPointsRouteHandler)
		auth.POST("/gamification/streak", routes.UpdateStreakRouteHandler)
		auth.GET("/gamification/profile", routes.GetProfileRouteHandler)
		auth.GET("/gamification/badges", routes.GetBadgesRouteHandler)
		auth.GET("/leaderboard", routes.GetLeaderboardRouteHandler)

		auth.GET("/gamification/challenges/today", routes.GetTodayChallengeRouteHandler)
		auth.POST("/gamification/challenges/progress", routes.RecordChallengeProgressRouteHandler)

		// Live updates
		auth.GET("/ws/gamification", websocket.GamificationWebSocketHandler)

		// Admin surface
		admin := auth.Group("/admin")
		{
			admin.POST("/gamification/badges/award",
				middlewares.RBACMiddleware("badge", "award"), routes.AwardBadgeRouteHandler)
			admin.POST("/gamification/catalog/seed",
				middlewares.RBACMiddleware("catalog", "seed"), routes.SeedBadgeCatalogRouteHandler)
		}
	}

	return router
}
