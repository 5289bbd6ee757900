package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/services"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/store"
)

type StationHandler struct {
	store *store.Store
	cache *services.CacheService
}

func NewStationHandler(st *store.Store, cache *services.CacheService) *StationHandler {
	return &StationHandler{store: st, cache: cache}
}

// GetStations lists every station in the stored panel with its centroid.
func (h *StationHandler) GetStations(c *gin.Context) {
	const cacheKey = "stations:all"

	var cached []store.StationInfo
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && len(cached) > 0 {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	stations, err := h.store.ListStations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	go h.cache.Set(context.Background(), cacheKey, stations, 5*time.Minute)

	c.JSON(http.StatusOK, gin.H{"data": stations})
}

// GetFit serves the latest fit summary for one station.
func (h *StationHandler) GetFit(c *gin.Context) {
	raw := c.Param("station")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid station path parameter, must be a positive integer"})
		return
	}
	station := models.StationKey(n)

	cacheKey := fmt.Sprintf("fit:%d", station)
	var cached models.FitSummary
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Station != 0 {
		c.JSON(http.StatusOK, cached)
		return
	}

	fit, err := h.store.FitSummary(c.Request.Context(), station)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no fit recorded for station"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	go h.cache.Set(context.Background(), cacheKey, fit, time.Minute)

	c.JSON(http.StatusOK, fit)
}
