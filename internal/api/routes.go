package api

import (
	"github.com/gin-gonic/gin"

	"github.com/abune-media/media-service/internal/api/handlers"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

// RegisterRoutes wires the media endpoints. authRequired guards the mutating
// routes; pass a pass-through handler when auth is disabled.
func RegisterRoutes(r *gin.Engine, h *handlers.MediaHandler, authRequired gin.HandlerFunc) {
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		media := api.Group("/media")
		{
			media.GET("", h.List)
			media.GET("/:key/info", h.GetInfo)

			// Delivery strategies; identical bytes, different framing.
			media.GET("/:key/stream", h.StreamDirect)
			media.GET("/:key/stream-chunked", h.StreamChunked)
			media.GET("/:key/stream-paginated", h.StreamPaginated)
			media.GET("/:key/stream-buffered", h.StreamBuffered)
			media.GET("/:key/download", h.Download)

			media.POST("/upload", authRequired, h.Upload)
			media.DELETE("/:key", authRequired, h.Delete)
			media.DELETE("/:key/permanent", authRequired, h.PermanentDelete)
		}
	}
}
