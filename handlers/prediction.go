package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/services"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/store"
)

type PredictionHandler struct {
	store *store.Store
	cache *services.CacheService
}

func NewPredictionHandler(st *store.Store, cache *services.CacheService) *PredictionHandler {
	return &PredictionHandler{store: st, cache: cache}
}

// GetPredictions serves the actual-vs-predicted table, newest-first.
func (h *PredictionHandler) GetPredictions(c *gin.Context) {
	p := ParsePagination(c)
	station, ok := parseStationQuery(c)
	if !ok {
		return
	}

	cursorStr := ""
	query := store.PredictionQuery{Station: station, Limit: p.Limit + 1}
	if p.Cursor != nil {
		cursorStr = p.Cursor.String()
		query.Before = &p.Cursor.BucketTS
		query.AfterStation = p.Cursor.Station
	}
	cacheKey := fmt.Sprintf("predictions:%d:%d:%s", station, p.Limit, cursorStr)

	var cached CursorResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.store.PredictionsPage(c.Request.Context(), query)
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
