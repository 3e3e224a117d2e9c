package routes

import (
	"genbot-ai/internal/apis/middlewares"
	"genbot-ai/internal/di"
	"log"

	"github.com/gin-gonic/gin"
)

func SetupChatRoutes(router *gin.Engine) {
	chatHandler, err := di.GetChatHandler()
	if err != nil {
		log.Fatalf("Failed to get chat handler: %v", err)
	}

	protected := router.Group("/api/sessions")
	protected.Use(middlewares.AuthMiddleware())
	{
		// Session lifecycle
		protected.POST("", chatHandler.CreateSession)
		protected.GET("", chatHandler.ListSessions)
		protected.GET("/:id", chatHandler.GetSession)
		protected.DELETE("/:id", chatHandler.DeleteSession)

		// Turns within a session
		protected.POST("/:id/messages", chatHandler.CreateMessage)

		// SSE endpoints for streaming
		protected.GET("/:id/stream", chatHandler.StreamChat)
		protected.POST("/:id/stream/cancel", chatHandler.CancelStream)
	}
}
