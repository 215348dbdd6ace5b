package routes

import (
	"github.com/gin-gonic/gin"

	"video-transcript/internal/api/v1/handlers"
	"video-transcript/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptService services.TranscriptService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	transcriptHandler := handlers.NewTranscriptHandler(container.TranscriptService)

	transcript := router.Group("/transcript")
	{
		transcript.POST("", transcriptHandler.Acquire)
		transcript.POST("/format", transcriptHandler.Format)
		transcript.POST("/upload", transcriptHandler.Upload)
	}

	transcripts := router.Group("/transcripts")
	{
		transcripts.GET("", transcriptHandler.List)
		transcripts.GET("/:id", transcriptHandler.Get)
	}
}
