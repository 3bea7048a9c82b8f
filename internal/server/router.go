package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP surface of the engine
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/healthcheck", h.HealthCheck)

	router.POST("/lexicon/ingest", h.Ingest)

	practice := router.Group("/practice")
	{
		practice.GET("/due", h.GetDue)
		practice.POST("/attempt", h.SubmitAttempt)
		practice.GET("/progress", h.Progress)
		practice.GET("/history", h.History)
		practice.POST("/reset", h.Reset)
	}

	router.GET("/snapshot/:clientId/:language", h.Snapshot)

	return router
}
