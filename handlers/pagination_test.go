package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func paginationContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestCursorRoundTrip(t *testing.T) {
	// A page that ends inside a bucket shared by several stations must
	// resume at the next station of that same bucket, so the cursor
	// carries both keys through the encode/parse cycle.
	in := Cursor{
		BucketTS: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC),
		Station:  42,
	}
	out, err := ParseCursor(in.String())
	if err != nil {
		t.Fatalf("ParseCursor(%q) error: %v", in.String(), err)
	}
	if !out.BucketTS.Equal(in.BucketTS) || out.Station != in.Station {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestParseCursorBareTimestamp(t *testing.T) {
	cur, err := ParseCursor("2024-03-05T14:00:00Z")
	if err != nil {
		t.Fatalf("ParseCursor() error: %v", err)
	}
	if cur.Station != 0 {
		t.Errorf("Station = %d, want 0 for a timestamp-only cursor", cur.Station)
	}
	if !cur.BucketTS.Equal(time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("BucketTS = %v", cur.BucketTS)
	}
}

func TestParseCursorInvalid(t *testing.T) {
	tests := []string{
		"not-a-timestamp",
		"2024-03-05T14:00:00Z~abc",
		"2024-03-05T14:00:00Z~-1",
		"~12",
	}
	for _, s := range tests {
		if _, err := ParseCursor(s); err == nil {
			t.Errorf("ParseCursor(%q) = nil error, want failure", s)
		}
	}
}

func TestParsePagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := ParsePagination(paginationContext(t, "/api/v1/panel"))
		if p.Limit != DefaultLimit {
			t.Errorf("Limit = %d, want %d", p.Limit, DefaultLimit)
		}
		if p.Cursor != nil {
			t.Errorf("Cursor = %+v, want nil", p.Cursor)
		}
	})

	t.Run("limit clamped", func(t *testing.T) {
		p := ParsePagination(paginationContext(t, "/api/v1/panel?limit=99999"))
		if p.Limit != MaxLimit {
			t.Errorf("Limit = %d, want %d", p.Limit, MaxLimit)
		}
	})

	t.Run("composite before", func(t *testing.T) {
		p := ParsePagination(paginationContext(t, "/api/v1/panel?before=2024-03-05T14:00:00Z~7"))
		if p.Cursor == nil {
			t.Fatal("Cursor = nil, want parsed cursor")
		}
		if p.Cursor.Station != 7 {
			t.Errorf("Cursor.Station = %d, want 7", p.Cursor.Station)
		}
	})

	t.Run("malformed before ignored", func(t *testing.T) {
		p := ParsePagination(paginationContext(t, "/api/v1/panel?before=garbage"))
		if p.Cursor != nil {
			t.Errorf("Cursor = %+v, want nil for a malformed value", p.Cursor)
		}
	})
}
