package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/services"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/store"
)

type PanelHandler struct {
	store *store.Store
	cache *services.CacheService
}

func NewPanelHandler(st *store.Store, cache *services.CacheService) *PanelHandler {
	return &PanelHandler{store: st, cache: cache}
}

// GetPanel serves the validated hourly panel, newest-first, optionally
// filtered by station.
func (h *PanelHandler) GetPanel(c *gin.Context) {
	p := ParsePagination(c)
	station, ok := parseStationQuery(c)
	if !ok {
		return
	}

	cursorStr := ""
	query := store.PanelQuery{Station: station, Limit: p.Limit + 1}
	if p.Cursor != nil {
		cursorStr = p.Cursor.String()
		query.Before = &p.Cursor.BucketTS
		query.AfterStation = p.Cursor.Station
	}
	cacheKey := fmt.Sprintf("panel:%d:%d:%s", station, p.Limit, cursorStr)

	var cached CursorResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.store.PanelPage(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		nextCursor = Cursor{BucketTS: last.Bucket, Station: int(last.Station)}.String()
	}

	resp := CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore}
	go h.cache.Set(context.Background(), cacheKey, resp, 30*time.Second)

	c.JSON(http.StatusOK, resp)
}

// parseStationQuery reads an optional station_id query parameter. Writes
// the error response itself on a malformed value.
func parseStationQuery(c *gin.Context) (models.StationKey, bool) {
	raw := c.Query("station_id")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid station_id parameter, must be a positive integer"})
		return 0, false
	}
	return models.StationKey(n), true
}
