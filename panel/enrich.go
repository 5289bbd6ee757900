package panel

import (
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// Centroid is a station's mean trip-start position.
type Centroid struct {
	Lon float64
	Lat float64
}

// Centroids computes the per-station mean lon/lat over all trips.
func Centroids(records []models.TripRecord) map[models.StationKey]Centroid {
	type acc struct {
		lon, lat float64
		n        int
	}
	sums := make(map[models.StationKey]*acc)
	for _, rec := range records {
		a := sums[rec.Station]
		if a == nil {
			a = &acc{}
			sums[rec.Station] = a
		}
		a.lon += rec.Lon
		a.lat += rec.Lat
		a.n++
	}
	centroids := make(map[models.StationKey]Centroid, len(sums))
	for station, a := range sums {
		centroids[station] = Centroid{Lon: a.lon / float64(a.n), Lat: a.lat / float64(a.n)}
	}
	return centroids
}

// EnrichGeo returns a copy of the panel with each row carrying its
// station's centroid. Rows for stations without any trip (and therefore
// without a centroid) keep nil coordinates. The input slice is not
// mutated.
func EnrichGeo(rows []models.PanelRow, centroids map[models.StationKey]Centroid) []models.PanelRow {
	out := make([]models.PanelRow, len(rows))
	copy(out, rows)
	for i := range out {
		if c, ok := centroids[out[i].Station]; ok {
			lon, lat := c.Lon, c.Lat
			out[i].Lon = &lon
			out[i].Lat = &lat
		}
	}
	return out
}
