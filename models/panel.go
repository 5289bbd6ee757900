package models

import "time"

// PanelRow is one (station, hour) observation in the aggregated panel.
// The (Station, Bucket) pair is unique across the panel and every hour
// of the analysis window is present for every station.
type PanelRow struct {
	Station   StationKey   `json:"station_id"`
	Bucket    time.Time    `json:"bucket_ts"`
	NRides    int          `json:"n_rides"`
	HourOfDay int          `json:"hour_of_day"`
	DayOfWeek time.Weekday `json:"day_of_week"`
	Lon       *float64     `json:"lon,omitempty"`
	Lat       *float64     `json:"lat,omitempty"`
}

// StationPanel is one station's rows ordered by bucket.
type StationPanel []PanelRow
