package models

import "time"

// FitTerm is one estimated coefficient. StdErr is nil when the fit was
// too degenerate to compute a covariance (e.g. zero residual degrees of
// freedom).
type FitTerm struct {
	Name   string   `json:"name"`
	Coef   float64  `json:"coef"`
	StdErr *float64 `json:"std_err,omitempty"`
}

// FitSummary is the inspectable outcome of fitting one station's model.
type FitSummary struct {
	Station      StationKey   `json:"station_id"`
	ModelVersion string       `json:"model_version"`
	TrainRows    int          `json:"train_rows"`
	Terms        []FitTerm    `json:"terms"`
	R2           float64      `json:"r2"`
	ResidualDF   int          `json:"residual_df"`
	BaselineDay  time.Weekday `json:"baseline_day"`
	BaselineHour int          `json:"baseline_hour"`
	NonEstimable []string     `json:"non_estimable,omitempty"`
	FittedAt     time.Time    `json:"fitted_at"`
}
