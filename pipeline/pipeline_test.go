package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/regression"
)

func windowStart() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

// tripsFor spreads n trips over the window for one station, one per hour
// starting at the window start.
func tripsFor(station models.StationKey, n int) []models.TripRecord {
	records := make([]models.TripRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, models.TripRecord{
			Station:   station,
			StartedAt: windowStart().Add(time.Duration(i)*time.Hour + 17*time.Minute),
			Lon:       5.32,
			Lat:       60.39,
		})
	}
	return records
}

func TestRunEndToEnd(t *testing.T) {
	opts := Options{
		WindowStart:   windowStart(),
		WindowEnd:     windowStart().Add(47 * time.Hour),
		SplitFraction: 0.75,
		Workers:       4,
		ModelVersion:  "test-v1",
	}
	records := append(tripsFor(1, 30), tripsFor(2, 10)...)

	result, err := Run(context.Background(), opts, records)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Stations != 2 {
		t.Errorf("Stations = %d, want 2", result.Stations)
	}
	if want := 2 * 48; len(result.Panel) != want {
		t.Errorf("panel rows = %d, want %d", len(result.Panel), want)
	}
	if len(result.Failures) != 0 {
		t.Errorf("Failures = %v, want none", result.Failures)
	}
	if len(result.Fits) != 2 {
		t.Errorf("fits = %d, want 2", len(result.Fits))
	}
	// 48 rows per station, 36 train / 12 test.
	if want := 2 * 12; len(result.Predictions) != want {
		t.Errorf("predictions = %d, want %d", len(result.Predictions), want)
	}

	// Merged predictions are ordered by station then bucket.
	for i := 1; i < len(result.Predictions); i++ {
		a, b := result.Predictions[i-1], result.Predictions[i]
		if a.Station > b.Station || (a.Station == b.Station && !b.Bucket.After(a.Bucket)) {
			t.Fatalf("predictions out of order at %d: %+v then %+v", i, a, b)
		}
	}

	// Geo enrichment made it through to the stored panel.
	for _, prow := range result.Panel {
		if prow.Lon == nil || prow.Lat == nil {
			t.Fatalf("panel row without centroid: %+v", prow)
		}
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	records := append(tripsFor(1, 30), append(tripsFor(2, 20), tripsFor(3, 25)...)...)
	opts := Options{
		WindowStart:  windowStart(),
		WindowEnd:    windowStart().Add(47 * time.Hour),
		ModelVersion: "test-v1",
	}

	opts.Workers = 1
	serial, err := Run(context.Background(), opts, records)
	if err != nil {
		t.Fatalf("Run(workers=1) error: %v", err)
	}
	opts.Workers = 8
	parallel, err := Run(context.Background(), opts, records)
	if err != nil {
		t.Fatalf("Run(workers=8) error: %v", err)
	}

	if len(serial.Predictions) != len(parallel.Predictions) {
		t.Fatalf("prediction counts differ: %d vs %d", len(serial.Predictions), len(parallel.Predictions))
	}
	for i := range serial.Predictions {
		a, b := serial.Predictions[i], parallel.Predictions[i]
		if a.Station != b.Station || !a.Bucket.Equal(b.Bucket) || a.Predicted != b.Predicted {
			t.Errorf("prediction %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestRunCollectsStationFailures(t *testing.T) {
	// A one-hour window gives every station a single-row panel, which is
	// too short to split. Failures are collected, not fatal.
	opts := Options{
		WindowStart:  windowStart(),
		WindowEnd:    windowStart(),
		ModelVersion: "test-v1",
	}
	records := append(tripsFor(1, 1), tripsFor(2, 1)...)

	result, err := Run(context.Background(), opts, records)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("Failures = %d, want 2", len(result.Failures))
	}
	for station, stErr := range result.Failures {
		var insufficientErr *regression.InsufficientDataError
		if !errors.As(stErr, &insufficientErr) {
			t.Errorf("station %d failure = %v, want InsufficientDataError", station, stErr)
		}
	}
	if len(result.Predictions) != 0 || len(result.Fits) != 0 {
		t.Errorf("failed stations produced output: %d predictions, %d fits", len(result.Predictions), len(result.Fits))
	}
	// The panel itself is still valid and returned.
	if len(result.Panel) != 2 {
		t.Errorf("panel rows = %d, want 2", len(result.Panel))
	}
}

func TestRunNoRecords(t *testing.T) {
	opts := Options{WindowStart: windowStart(), WindowEnd: windowStart().Add(time.Hour)}
	if _, err := Run(context.Background(), opts, nil); err == nil {
		t.Error("Run() with no records expected error")
	}
}

func TestRunDuplicateTripsCountBoth(t *testing.T) {
	ts := windowStart().Add(30 * time.Minute)
	records := []models.TripRecord{
		{Station: 1, StartedAt: ts, Lon: 5.3, Lat: 60.4},
		{Station: 1, StartedAt: ts, Lon: 5.3, Lat: 60.4},
	}
	opts := Options{
		WindowStart:  windowStart(),
		WindowEnd:    windowStart().Add(3 * time.Hour),
		ModelVersion: "test-v1",
	}
	result, err := Run(context.Background(), opts, records)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.Panel) != 4 {
		t.Fatalf("panel rows = %d, want 4", len(result.Panel))
	}
	if result.Panel[0].NRides != 2 {
		t.Errorf("first bucket n_rides = %d, want 2 (duplicates aggregate, not dedupe)", result.Panel[0].NRides)
	}
}
