package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"legal-lens/internal/config"
)

func NewRouter(cfg config.ServerConfig, svc Service) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	h := NewHandler(svc)
	router.GET("/healthcheck", h.HealthCheck)

	api := router.Group("/api")
	api.POST("/extract", h.Extract)
	api.POST("/process", h.Extract)
	api.POST("/analyze", h.Analyze)
	api.POST("/chat", h.Chat)

	return router
}
