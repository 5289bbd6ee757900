package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/panel"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/regression"
)

// Options configure one pipeline run. Zero-value fields fall back to the
// documented defaults.
type Options struct {
	WindowStart   time.Time
	WindowEnd     time.Time
	SplitFraction float64
	Workers       int
	ModelVersion  string
}

// StationOutcome is the result of one station's split/fit/predict leg.
// Err is set when the leg failed; failures never abort other stations.
type StationOutcome struct {
	Station     models.StationKey
	Summary     models.FitSummary
	Predictions []models.PredictionRow
	Err         error
}

// RunResult is everything a run produced, ready for storage and
// publication.
type RunResult struct {
	Panel       []models.PanelRow
	Predictions []models.PredictionRow
	Fits        []models.FitSummary
	Failures    map[models.StationKey]error
	Stations    int
	Duration    time.Duration
}

// Run executes the full pipeline: build the skeleton, aggregate and join
// the trips, validate the panel, enrich it, then fan split/fit/predict
// out over the stations. Aggregation and validation form a hard barrier:
// no station is modeled unless the whole panel passed both invariant
// checks. Per-station failures are collected in RunResult.Failures.
func Run(ctx context.Context, opts Options, records []models.TripRecord) (*RunResult, error) {
	start := time.Now()
	defer func() {
		runDuration.Observe(time.Since(start).Seconds())
	}()

	if opts.SplitFraction == 0 {
		opts.SplitFraction = 0.75
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ModelVersion == "" {
		opts.ModelVersion = "dow-hour-ols-v1"
	}

	rows, err := buildPanel(opts, records)
	if err != nil {
		return nil, err
	}
	panelRowsBuilt.Add(float64(len(rows)))

	byStation := make(map[models.StationKey]models.StationPanel)
	for _, row := range rows {
		byStation[row.Station] = append(byStation[row.Station], row)
	}
	stations := make([]models.StationKey, 0, len(byStation))
	for s := range byStation {
		stations = append(stations, s)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i] < stations[j] })

	outcomes := fanOut(ctx, opts, stations, byStation)

	result := &RunResult{
		Panel:    rows,
		Failures: make(map[models.StationKey]error),
		Stations: len(stations),
	}
	for _, out := range outcomes {
		if out.Err != nil {
			stationsFailed.Inc()
			result.Failures[out.Station] = out.Err
			continue
		}
		stationsFitted.Inc()
		predictionsGenerated.Add(float64(len(out.Predictions)))
		result.Fits = append(result.Fits, out.Summary)
		result.Predictions = append(result.Predictions, out.Predictions...)
	}
	sort.Slice(result.Predictions, func(i, j int) bool {
		a, b := result.Predictions[i], result.Predictions[j]
		if a.Station != b.Station {
			return a.Station < b.Station
		}
		return a.Bucket.Before(b.Bucket)
	})
	sort.Slice(result.Fits, func(i, j int) bool { return result.Fits[i].Station < result.Fits[j].Station })

	result.Duration = time.Since(start)
	log.Printf("pipeline run completed: %d stations, %d panel rows, %d predictions, %d failures (%.2fs)",
		result.Stations, len(result.Panel), len(result.Predictions), len(result.Failures),
		result.Duration.Seconds())
	return result, nil
}

// buildPanel is the sequential barrier stage: grid, aggregate, join,
// validate, enrich. Any error here is fatal for the whole run.
func buildPanel(opts Options, records []models.TripRecord) ([]models.PanelRow, error) {
	counts, err := panel.AggregateHourly(records)
	if err != nil {
		return nil, err
	}

	grid, err := panel.BuildGrid(panel.StationKeys(records), opts.WindowStart, opts.WindowEnd)
	if err != nil {
		return nil, err
	}

	rows := panel.Join(grid, counts)
	if err := panel.Validate(rows); err != nil {
		return nil, fmt.Errorf("panel validation failed: %w", err)
	}

	return panel.EnrichGeo(rows, panel.Centroids(records)), nil
}

// fanOut runs split/fit/predict for each station on a fixed-size worker
// pool. Station panels are independent data, so the only coordination is
// handing out work and collecting outcomes.
func fanOut(ctx context.Context, opts Options, stations []models.StationKey, byStation map[models.StationKey]models.StationPanel) []StationOutcome {
	jobs := make(chan models.StationKey)
	results := make(chan StationOutcome)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for station := range jobs {
				results <- processStation(opts, station, byStation[station])
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, station := range stations {
			select {
			case jobs <- station:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]StationOutcome, 0, len(stations))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func processStation(opts Options, station models.StationKey, rows models.StationPanel) StationOutcome {
	split, err := regression.Split(station, rows, opts.SplitFraction)
	if err != nil {
		return StationOutcome{Station: station, Err: err}
	}

	model, err := regression.Fit(station, split.Train, opts.ModelVersion)
	if err != nil {
		return StationOutcome{Station: station, Err: err}
	}

	predictions, err := regression.Predict(model, split.Test, opts.ModelVersion)
	if err != nil {
		return StationOutcome{Station: station, Err: err}
	}

	return StationOutcome{Station: station, Summary: model.Summary(), Predictions: predictions}
}
