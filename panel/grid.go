package panel

import (
	"sort"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// Slot is one (station, hour) cell of the panel skeleton.
type Slot struct {
	Station models.StationKey
	Bucket  time.Time
}

// BuildGrid produces the complete skeleton: one slot for every station and
// every hour in the inclusive range [start, end]. Output is ordered by
// station, then bucket, and has exactly len(stations) * hours slots.
func BuildGrid(stations []models.StationKey, start, end time.Time) ([]Slot, error) {
	if len(stations) == 0 {
		return nil, &EmptyInputError{What: "no stations for time grid"}
	}
	start = start.UTC()
	end = end.UTC()
	if end.Before(start) {
		return nil, &InvalidRangeError{Start: start, End: end, Reason: "end before start"}
	}
	if !start.Truncate(time.Hour).Equal(start) || !end.Truncate(time.Hour).Equal(end) {
		return nil, &InvalidRangeError{Start: start, End: end, Reason: "bounds not aligned to hour"}
	}

	keys := make([]models.StationKey, len(stations))
	copy(keys, stations)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	hours := int(end.Sub(start)/time.Hour) + 1
	grid := make([]Slot, 0, len(keys)*hours)
	for _, station := range keys {
		for h := 0; h < hours; h++ {
			grid = append(grid, Slot{Station: station, Bucket: start.Add(time.Duration(h) * time.Hour)})
		}
	}
	return grid, nil
}
