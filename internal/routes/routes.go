package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giglink_backend/internal/handlers"
	"giglink_backend/internal/logger"
	"giglink_backend/internal/middleware"
	"giglink_backend/ws"
)

// RegisterRoutes wires all HTTP and WebSocket routes.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.Handler,
) {
	ginRouter.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.BookingHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
	}

	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware())
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws registered")
}
