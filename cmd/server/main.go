package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kindalike/backend/internal/api/handlers"
	"github.com/kindalike/backend/internal/auth"
	"github.com/kindalike/backend/internal/config"
	"github.com/kindalike/backend/internal/database"
	"github.com/kindalike/backend/internal/health"
	"github.com/kindalike/backend/internal/llm"
	"github.com/kindalike/backend/internal/location"
	"github.com/kindalike/backend/internal/middleware"
	"github.com/kindalike/backend/internal/repository"
	"github.com/kindalike/backend/internal/services"
	"github.com/kindalike/backend/internal/yelp"
	"github.com/kindalike/backend/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()
	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateProviders(); err != nil {
		logger.WithError(err).Fatal("Missing provider credentials")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to databases")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	cache := database.NewCache(dbManager.Redis, logger)
	repoManager := repository.NewRepositoryManager(dbManager.DB)
	tokenIssuer := auth.NewTokenIssuer(cfg.JWT.Secret)

	structurer := llm.NewStructurer(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, logger)
	yelpClient := yelp.NewClient(cfg.Yelp.APIKey, logger)
	yelpService := yelp.NewService(yelpClient, cache, logger)
	resolver := location.NewResolver(cache, logger)

	chatService := services.NewChatService(repoManager, structurer, yelpService, resolver, logger)

	authHandler := handlers.NewAuthHandler(repoManager, tokenIssuer, logger)
	prefsHandler := handlers.NewPreferencesHandler(repoManager, logger)
	chatHandler := handlers.NewChatHandler(chatService, logger)
	checker := health.NewChecker(dbManager, yelpClient, logger)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.NewRateLimiter(100).RateLimit())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to KindaLike API"})
	})
	router.GET("/health", checker.Handler)

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/signup", authHandler.HandleSignup)
		authRoutes.POST("/login", authHandler.HandleLogin)
	}

	prefsRoutes := router.Group("/api/preferences")
	prefsRoutes.Use(middleware.RequireAuth(tokenIssuer))
	{
		prefsRoutes.GET("", prefsHandler.HandleGet)
		prefsRoutes.POST("", prefsHandler.HandleUpsert)
	}

	chatRoutes := router.Group("/api/chat")
	chatRoutes.Use(middleware.RequireAuth(tokenIssuer))
	{
		chatRoutes.POST("/message", chatHandler.HandleMessage)
		chatRoutes.GET("/sessions", chatHandler.HandleListSessions)
		chatRoutes.POST("/sessions/new", chatHandler.HandleNewSession)
		chatRoutes.GET("/sessions/:session_id/messages", chatHandler.HandleSessionMessages)
		chatRoutes.DELETE("/sessions/:session_id", chatHandler.HandleDeactivateSession)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
