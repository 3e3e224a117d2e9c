package routes

import (
	"genbot-ai/internal/apis/middlewares"
	"genbot-ai/internal/di"
	"log"

	"github.com/gin-gonic/gin"
)

func SetupBotRoutes(router *gin.Engine) {
	botHandler, err := di.GetBotHandler()
	if err != nil {
		log.Fatalf("Failed to get bot handler: %v", err)
	}

	protected := router.Group("/api/bots")
	protected.Use(middlewares.AuthMiddleware())
	{
		protected.POST("", botHandler.Create)
		protected.GET("/:id", botHandler.GetByID)
		protected.PATCH("/:id", botHandler.Update)
		protected.DELETE("/:id", botHandler.Delete)
	}
}
