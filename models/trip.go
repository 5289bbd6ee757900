package models

import "time"

// StationKey is the canonical station identifier. Source CSVs carry
// start_station_id as a float ("35.0"); it is normalized to this integer
// type at ingest and never compared as a raw float downstream.
type StationKey int

// TripRecord is one raw rental event as read from the trip logs.
// Immutable after loading.
type TripRecord struct {
	Station   StationKey `json:"start_station_id"`
	StartedAt time.Time  `json:"started_at"`
	Lon       float64    `json:"start_station_longitude"`
	Lat       float64    `json:"start_station_latitude"`
}
