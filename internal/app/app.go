package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"giglink_backend/database"
	"giglink_backend/internal/config"
	"giglink_backend/internal/handlers"
	"giglink_backend/internal/logger"
	"giglink_backend/internal/middleware"
	"giglink_backend/internal/repositories"
	"giglink_backend/internal/routes"
	"giglink_backend/internal/services"
	"giglink_backend/internal/validator"
	"giglink_backend/ws"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("AutoMigrate failed", "error", err)
	}

	ginRouter := SetupRouter(context.Background(), cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the full application (repositories, services, websocket
// manager, handlers, routes) around the given DB handle. Background loops
// (ws manager, notification push worker) run until ctx is cancelled.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	wsManager := ws.NewManager()
	go wsManager.Run()

	serviceContainer := initializeServices(cfg, gormDB, wsManager)
	go serviceContainer.NotificationService.Run(ctx)

	appHandlers := initializeHandlers(serviceContainer)
	wsHandler := ws.NewHandler(wsManager)

	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, pusher services.LivePusher) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository(gormDB)
	bookingRepo := repositories.NewBookingRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)

	ratingService := services.NewRatingService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo, pusher, cfg.Notifications.QueueSize)
	bookingService := services.NewBookingService(bookingRepo, userRepo, ratingService, notificationService)

	return &services.ServiceContainer{
		BookingService:      bookingService,
		RatingService:       ratingService,
		NotificationService: notificationService,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		BookingHandler:      handlers.NewBookingHandler(baseHandler, container.BookingService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, container.NotificationService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigin))
	return router
}
