package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Cursor marks a page boundary in the (bucket_ts DESC, station_id ASC)
// ordering. Many stations share each hourly bucket, so paging on the
// timestamp alone would skip the rest of a bucket whenever a page ends
// inside one; the station component resumes mid-bucket.
type Cursor struct {
	BucketTS time.Time
	Station  int
}

// String encodes the cursor as "<RFC3339Nano>~<station_id>".
func (c Cursor) String() string {
	return c.BucketTS.Format(time.RFC3339Nano) + "~" + strconv.Itoa(c.Station)
}

// ParseCursor reads a cursor string. A bare RFC3339 timestamp is also
// accepted and means "strictly earlier buckets", with no station part.
func ParseCursor(s string) (Cursor, error) {
	tsPart, stationPart, found := strings.Cut(s, "~")
	ts, err := time.Parse(time.RFC3339Nano, tsPart)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor timestamp %q: %w", tsPart, err)
	}
	if !found {
		return Cursor{BucketTS: ts}, nil
	}
	station, err := strconv.Atoi(stationPart)
	if err != nil || station <= 0 {
		return Cursor{}, fmt.Errorf("invalid cursor station %q", stationPart)
	}
	return Cursor{BucketTS: ts, Station: station}, nil
}

type PaginationParams struct {
	Limit  int
	Cursor *Cursor
}

type CursorResponse struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

func ParsePagination(c *gin.Context) PaginationParams {
	p := PaginationParams{Limit: DefaultLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if beforeStr := c.Query("before"); beforeStr != "" {
		if cur, err := ParseCursor(beforeStr); err == nil {
			p.Cursor = &cur
		}
	}

	return p
}
