package routes

import (
	"time"

	"concierge/handlers"
	"concierge/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterChatRoutes registers the guest conversation endpoints.
func RegisterChatRoutes(r *gin.Engine, h *handlers.ChatHandler, perMin int, logger *zap.Logger) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.RateLimitMiddleware(perMin, logger))
		api.POST("", h.Chat)
		api.POST("/voice", h.Voice)
		api.GET("/ws", h.Stream)
		api.DELETE("/session/:userID", h.ResetSession)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, h *handlers.ChatHandler, origins []string, perMin int, logger *zap.Logger) {
	corsCfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// Credentials cannot be combined with a wildcard origin.
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	RegisterChatRoutes(r, h, perMin, logger)
	RegisterHealthRoute(r)
}
