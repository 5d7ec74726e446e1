package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"

	"rtsched/internal/api"
	"rtsched/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "YAML config path")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	api.SetupRoutes(router, cfg)

	log.Printf("starting server, listening on :%s (rm placement %s, aperiodic deadline %d)",
		cfg.Server.Port, cfg.RM.Placement, cfg.AperiodicDeadline)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
