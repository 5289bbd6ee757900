package models

import "time"

// PredictionRow pairs a held-out panel row with its model output.
// Predicted comes from an unconstrained linear model: it may be negative
// or fractional and is stored as-is, never clamped.
type PredictionRow struct {
	Station      StationKey `json:"station_id"`
	Bucket       time.Time  `json:"bucket_ts"`
	NRides       int        `json:"n_rides"`
	Predicted    float64    `json:"predicted"`
	ModelVersion string     `json:"model_version"`
}
