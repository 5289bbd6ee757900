package panel

import (
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// slotKey is the comparable map key for a panel cell. Buckets are keyed by
// unix seconds so that equal instants always collide regardless of how the
// time.Time was produced.
type slotKey struct {
	station models.StationKey
	unix    int64
}

// Counts maps observed (station, hour) cells to their ride count. Cells
// with no observed trips are simply absent; Join resolves absence to zero.
type Counts map[slotKey]int

// Get returns the count for a cell, zero when unobserved.
func (c Counts) Get(station models.StationKey, bucket time.Time) int {
	return c[slotKey{station: station, unix: bucket.UTC().Unix()}]
}

// Len reports the number of observed cells.
func (c Counts) Len() int { return len(c) }

// AggregateHourly buckets raw trips into (station, hour) cells and counts
// rides per cell. Truncation is calendar truncation to the hour, never
// rounding. Every trip counts: duplicate records for the same instant add
// up rather than deduplicate.
func AggregateHourly(records []models.TripRecord) (Counts, error) {
	if len(records) == 0 {
		return nil, &EmptyInputError{What: "no trip records to aggregate"}
	}
	counts := make(Counts)
	for _, rec := range records {
		bucket := rec.StartedAt.UTC().Truncate(time.Hour)
		counts[slotKey{station: rec.Station, unix: bucket.Unix()}]++
	}
	return counts, nil
}

// StationKeys returns the distinct stations observed in the record set,
// unordered.
func StationKeys(records []models.TripRecord) []models.StationKey {
	seen := make(map[models.StationKey]struct{})
	for _, rec := range records {
		seen[rec.Station] = struct{}{}
	}
	keys := make([]models.StationKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	return keys
}
