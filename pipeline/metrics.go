package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	panelRowsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bysykkel_pipeline_panel_rows_built_total",
		Help: "Total number of panel rows produced across runs.",
	})
	stationsFitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bysykkel_pipeline_stations_fitted_total",
		Help: "Total number of station models fitted successfully.",
	})
	stationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bysykkel_pipeline_stations_failed_total",
		Help: "Total number of stations whose fit or predict failed.",
	})
	predictionsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bysykkel_pipeline_predictions_generated_total",
		Help: "Total number of prediction rows generated.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bysykkel_pipeline_run_duration_seconds",
		Help:    "Duration of a full aggregation and modeling run.",
		Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
	})
)
