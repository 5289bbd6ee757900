package panel

import (
	"errors"
	"sort"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// Validate enforces the panel's two structural invariants:
//
//   - uniqueness: exactly one row per (station, bucket) key
//   - contiguity: per station, sorted buckets advance by exactly one hour
//
// Both checks always run; all violations are reported together. The check
// is read-only and idempotent, so callers may re-run it at any point.
// A non-nil result means the panel must not reach modeling.
func Validate(rows []models.PanelRow) error {
	var errs []error

	seen := make(map[slotKey]int, len(rows))
	order := make([]slotKey, 0, len(rows))
	for _, row := range rows {
		k := slotKey{station: row.Station, unix: row.Bucket.UTC().Unix()}
		if seen[k] == 0 {
			order = append(order, k)
		}
		seen[k]++
	}
	var dups []Slot
	for _, k := range order {
		if seen[k] > 1 {
			dups = append(dups, Slot{Station: k.station, Bucket: time.Unix(k.unix, 0).UTC()})
		}
	}
	if len(dups) > 0 {
		errs = append(errs, &DuplicateKeyError{Keys: dups})
	}

	byStation := make(map[models.StationKey][]time.Time)
	for _, row := range rows {
		byStation[row.Station] = append(byStation[row.Station], row.Bucket.UTC())
	}
	stations := make([]models.StationKey, 0, len(byStation))
	for s := range byStation {
		stations = append(stations, s)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i] < stations[j] })

	for _, station := range stations {
		buckets := byStation[station]
		sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })
		for i := 1; i < len(buckets); i++ {
			if buckets[i].Sub(buckets[i-1]) != time.Hour {
				errs = append(errs, &GapOrOverlapError{Station: station, Prev: buckets[i-1], Next: buckets[i]})
			}
		}
	}

	return errors.Join(errs...)
}
