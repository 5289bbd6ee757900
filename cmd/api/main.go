package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/config"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/handlers"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/middleware"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/services"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.New(ctx, cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	cache, err := services.NewCacheService(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer cache.Close()

	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "UP",
			"message": "Bysykkel demand API is running",
		})
	})

	stationHandler := handlers.NewStationHandler(st, cache)
	panelHandler := handlers.NewPanelHandler(st, cache)
	predictionHandler := handlers.NewPredictionHandler(st, cache)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stations", stationHandler.GetStations)
		v1.GET("/panel", panelHandler.GetPanel)
		v1.GET("/predictions", predictionHandler.GetPredictions)
		v1.GET("/fits/:station", stationHandler.GetFit)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
