package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account_api/internal/config"
	"account_api/internal/handler"
	"account_api/internal/middleware"
	"account_api/internal/repository"
	"account_api/internal/service"
	"account_api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// --- Document store ---
	client, err := config.ConnectDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to document store", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("failed to disconnect from document store", zap.Error(err))
		}
	}()

	db := client.Database(cfg.MongoDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := config.EnsureIndexes(ctx, db); err != nil {
			cancel()
			logger.Fatal("failed to ensure indexes", zap.Error(err))
		}
		cancel()
	}

	// --- Wiring ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTTTL)
	userRepo := repository.NewUserRepository(db)
	mailer := service.NewLogMailer(logger)

	authService := service.NewAuthService(userRepo, jwtUtil, mailer, logger)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService, cfg.CookieTTL)
	userHandler := handler.NewUserHandler(userService, userRepo.Resource())

	// --- Router ---
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(cfg.Development(), logger),
	)

	protect := middleware.Protect(jwtUtil, userRepo)
	adminOnly := middleware.AdminOnly()

	users := router.Group("/api/v1/users")
	authHandler.RegisterRoutes(users, protect)
	userHandler.RegisterRoutes(users, protect, adminOnly)

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown: drain in-flight requests, then close the store ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
