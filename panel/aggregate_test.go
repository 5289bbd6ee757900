package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

func trip(station models.StationKey, ts time.Time) models.TripRecord {
	return models.TripRecord{Station: station, StartedAt: ts, Lon: 5.32, Lat: 60.39}
}

func TestAggregateHourly(t *testing.T) {
	t.Run("calendar truncation, not rounding", func(t *testing.T) {
		counts, err := AggregateHourly([]models.TripRecord{
			trip(1, time.Date(2024, 1, 1, 0, 59, 59, 0, time.UTC)),
			trip(1, time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)),
		})
		if err != nil {
			t.Fatalf("AggregateHourly() error: %v", err)
		}
		if got := counts.Get(1, hourAt(1, 0)); got != 2 {
			t.Errorf("count at 00:00 = %d, want 2", got)
		}
		if got := counts.Get(1, hourAt(1, 1)); got != 0 {
			t.Errorf("count at 01:00 = %d, want 0 (00:59 must not round up)", got)
		}
	})

	t.Run("duplicate records add up", func(t *testing.T) {
		ts := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
		counts, err := AggregateHourly([]models.TripRecord{trip(1, ts), trip(1, ts)})
		if err != nil {
			t.Fatalf("AggregateHourly() error: %v", err)
		}
		if got := counts.Get(1, hourAt(1, 0)); got != 2 {
			t.Errorf("count = %d, want 2 (trips counted, not deduplicated)", got)
		}
		if counts.Len() != 1 {
			t.Errorf("cells = %d, want 1", counts.Len())
		}
	})

	t.Run("stations keep separate cells", func(t *testing.T) {
		ts := time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC)
		counts, err := AggregateHourly([]models.TripRecord{trip(1, ts), trip(2, ts)})
		if err != nil {
			t.Fatalf("AggregateHourly() error: %v", err)
		}
		if counts.Get(1, hourAt(1, 0)) != 1 || counts.Get(2, hourAt(1, 0)) != 1 {
			t.Errorf("per-station counts wrong: %v %v", counts.Get(1, hourAt(1, 0)), counts.Get(2, hourAt(1, 0)))
		}
	})

	t.Run("non-UTC input normalized", func(t *testing.T) {
		oslo := time.FixedZone("CET", 3600)
		counts, err := AggregateHourly([]models.TripRecord{
			trip(1, time.Date(2024, 1, 1, 1, 30, 0, 0, oslo)), // 00:30 UTC
		})
		if err != nil {
			t.Fatalf("AggregateHourly() error: %v", err)
		}
		if got := counts.Get(1, hourAt(1, 0)); got != 1 {
			t.Errorf("count at 00:00 UTC = %d, want 1", got)
		}
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, err := AggregateHourly(nil)
		var emptyErr *EmptyInputError
		if !errors.As(err, &emptyErr) {
			t.Errorf("err = %v, want EmptyInputError", err)
		}
	})
}

func TestStationKeys(t *testing.T) {
	ts := hourAt(1, 0)
	keys := StationKeys([]models.TripRecord{trip(2, ts), trip(1, ts), trip(2, ts)})
	if len(keys) != 2 {
		t.Fatalf("len(keys) = %d, want 2", len(keys))
	}
	seen := map[models.StationKey]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("keys = %v, want {1, 2}", keys)
	}
}
