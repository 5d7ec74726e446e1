// Package api exposes simulation runs over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"rtsched/internal/config"
)

// SetupRoutes registers every route under /api/v1.
func SetupRoutes(router *gin.Engine, cfg *config.Config) {
	simulationHandler := NewSimulationHandler(cfg)

	public := router.Group("/api/v1")
	{
		public.GET("/health", simulationHandler.CheckHealth)

		simulate := public.Group("/simulate")
		{
			simulate.POST("", simulationHandler.Simulate)
			simulate.POST("/report", simulationHandler.SimulateReport)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		Error(c, NOT_FOUND, "")
	})
}
