package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hearthlabs/hearth-backend/internal/handlers"
	"github.com/hearthlabs/hearth-backend/internal/middleware"
	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log                   *logger.Logger
	HealthHandler         *handlers.HealthHandler
	RecommendationHandler *handlers.RecommendationHandler
	InsightsHandler       *handlers.InsightsHandler
	TipsHandler           *handlers.TipsHandler
	AllowOrigins          []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-ID", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/children/:childId/recommendations", cfg.RecommendationHandler.GetRecommendations)
		api.GET("/children/:childId/insights", cfg.InsightsHandler.GetInsights)
		api.GET("/children/:childId/tips", cfg.TipsHandler.GetTips)
	}

	return router
}
