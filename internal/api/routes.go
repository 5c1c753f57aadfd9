package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/jroosing/mailprobe/internal/api/docs" // swagger docs
	"github.com/jroosing/mailprobe/internal/api/handlers"
	"github.com/jroosing/mailprobe/internal/api/middleware"
	"github.com/jroosing/mailprobe/internal/config"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	// Swagger UI at /swagger/*
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	// Optional API key protection.
	if cfg != nil && cfg.API.APIKey != "" {
		api.Use(middleware.RequireAPIKey(cfg.API.APIKey))
	}

	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)
	api.GET("/config", h.GetConfig)

	api.GET("/lookup/:name", h.Lookup)
	api.GET("/mx/:domain", h.MX)

	api.POST("/zones/:zone/transfer", h.StartTransfer)
	api.GET("/transfers", h.ListTransfers)
	api.GET("/transfers/:id", h.GetTransfer)
	api.DELETE("/transfers/:id", h.DeleteTransfer)
}
