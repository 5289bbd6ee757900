package panel

import (
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// Join left-joins observed counts onto the skeleton and derives the
// calendar features per row. Every skeleton slot yields exactly one row;
// slots without an observed count get n_rides = 0. The zero fill is scoped
// to n_rides only — "absent" and "zero observed rides" mean the same thing
// here and nothing else is defaulted.
func Join(skeleton []Slot, counts Counts) []models.PanelRow {
	rows := make([]models.PanelRow, 0, len(skeleton))
	for _, slot := range skeleton {
		bucket := slot.Bucket.UTC()
		rows = append(rows, models.PanelRow{
			Station:   slot.Station,
			Bucket:    bucket,
			NRides:    counts.Get(slot.Station, bucket),
			HourOfDay: bucket.Hour(),
			DayOfWeek: bucket.Weekday(),
		})
	}
	return rows
}
