// Package store persists pipeline outputs to Postgres and serves the
// read queries behind the API. It is the hand-off point to downstream
// visualization and reporting, which only ever read.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool and verifies connectivity.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS hourly_panel (
	station_id  INTEGER          NOT NULL,
	bucket_ts   TIMESTAMPTZ      NOT NULL,
	n_rides     INTEGER          NOT NULL,
	hour_of_day SMALLINT         NOT NULL,
	day_of_week SMALLINT         NOT NULL,
	lon         DOUBLE PRECISION,
	lat         DOUBLE PRECISION,
	PRIMARY KEY (station_id, bucket_ts)
);

CREATE TABLE IF NOT EXISTS ride_predictions (
	station_id    INTEGER          NOT NULL,
	bucket_ts     TIMESTAMPTZ      NOT NULL,
	n_rides       INTEGER          NOT NULL,
	predicted     DOUBLE PRECISION NOT NULL,
	model_version TEXT             NOT NULL,
	PRIMARY KEY (station_id, bucket_ts, model_version)
);

CREATE TABLE IF NOT EXISTS station_fits (
	station_id    INTEGER     NOT NULL,
	model_version TEXT        NOT NULL,
	train_rows    INTEGER     NOT NULL,
	r2            DOUBLE PRECISION NOT NULL,
	residual_df   INTEGER     NOT NULL,
	baseline_day  SMALLINT    NOT NULL,
	baseline_hour SMALLINT    NOT NULL,
	terms         JSONB       NOT NULL,
	non_estimable JSONB,
	fitted_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (station_id, model_version)
);
`

// EnsureSchema creates the output tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// UpsertPanel writes the validated panel, replacing rows for re-run keys.
func (s *Store) UpsertPanel(ctx context.Context, rows []models.PanelRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO hourly_panel (station_id, bucket_ts, n_rides, hour_of_day, day_of_week, lon, lat)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (station_id, bucket_ts) DO UPDATE
SET n_rides = EXCLUDED.n_rides,
    hour_of_day = EXCLUDED.hour_of_day,
    day_of_week = EXCLUDED.day_of_week,
    lon = EXCLUDED.lon,
    lat = EXCLUDED.lat`
	for _, row := range rows {
		batch.Queue(query, int(row.Station), row.Bucket, row.NRides, row.HourOfDay, int(row.DayOfWeek), row.Lon, row.Lat)
	}
	return s.sendBatch(ctx, batch, len(rows))
}

// UpsertPredictions writes the prediction table for one model version.
func (s *Store) UpsertPredictions(ctx context.Context, rows []models.PredictionRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO ride_predictions (station_id, bucket_ts, n_rides, predicted, model_version)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (station_id, bucket_ts, model_version) DO UPDATE
SET n_rides = EXCLUDED.n_rides,
    predicted = EXCLUDED.predicted`
	for _, row := range rows {
		batch.Queue(query, int(row.Station), row.Bucket, row.NRides, row.Predicted, row.ModelVersion)
	}
	return s.sendBatch(ctx, batch, len(rows))
}

// UpsertFits writes per-station fit summaries, terms as JSONB.
func (s *Store) UpsertFits(ctx context.Context, fits []models.FitSummary) error {
	if len(fits) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO station_fits (station_id, model_version, train_rows, r2, residual_df, baseline_day, baseline_hour, terms, non_estimable, fitted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (station_id, model_version) DO UPDATE
SET train_rows = EXCLUDED.train_rows,
    r2 = EXCLUDED.r2,
    residual_df = EXCLUDED.residual_df,
    baseline_day = EXCLUDED.baseline_day,
    baseline_hour = EXCLUDED.baseline_hour,
    terms = EXCLUDED.terms,
    non_estimable = EXCLUDED.non_estimable,
    fitted_at = EXCLUDED.fitted_at`
	for _, fit := range fits {
		terms, err := json.Marshal(fit.Terms)
		if err != nil {
			return err
		}
		nonEstimable, err := json.Marshal(fit.NonEstimable)
		if err != nil {
			return err
		}
		batch.Queue(query, int(fit.Station), fit.ModelVersion, fit.TrainRows, fit.R2, fit.ResidualDF,
			int(fit.BaselineDay), fit.BaselineHour, terms, nonEstimable, fit.FittedAt)
	}
	return s.sendBatch(ctx, batch, len(fits))
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()
	for i := 0; i < n; i++ {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// StationInfo is the station directory entry served by the API.
type StationInfo struct {
	Station models.StationKey `json:"station_id"`
	Lon     *float64          `json:"lon,omitempty"`
	Lat     *float64          `json:"lat,omitempty"`
	Rows    int               `json:"rows"`
}

// ListStations returns the distinct stations in the stored panel with
// their centroids and row counts.
func (s *Store) ListStations(ctx context.Context) ([]StationInfo, error) {
	rows, err := s.pool.Query(ctx, `
SELECT station_id, MIN(lon), MIN(lat), COUNT(*)
FROM hourly_panel
GROUP BY station_id
ORDER BY station_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]StationInfo, 0)
	for rows.Next() {
		var info StationInfo
		if err := rows.Scan(&info.Station, &info.Lon, &info.Lat, &info.Rows); err != nil {
			return nil, err
		}
		stations = append(stations, info)
	}
	return stations, rows.Err()
}

// PanelQuery filters a panel page. Zero Station means all stations.
// The cursor is composite: Before/AfterStation resume the page in the
// (bucket_ts DESC, station_id ASC) ordering, so a page boundary inside
// a bucket shared by many stations does not skip the rest of it. Zero
// AfterStation means a timestamp-only cursor, strictly earlier buckets.
type PanelQuery struct {
	Station      models.StationKey
	Limit        int
	Before       *time.Time
	AfterStation int
}

// PanelPage returns panel rows newest-first, cursor-paged on
// (bucket_ts, station_id).
func (s *Store) PanelPage(ctx context.Context, q PanelQuery) ([]models.PanelRow, error) {
	sql := `
SELECT station_id, bucket_ts, n_rides, hour_of_day, day_of_week, lon, lat
FROM hourly_panel
WHERE ($1 = 0 OR station_id = $1)
  AND ($2::timestamptz IS NULL OR bucket_ts < $2
       OR ($3 > 0 AND bucket_ts = $2 AND station_id > $3))
ORDER BY bucket_ts DESC, station_id
LIMIT $4`
	rows, err := s.pool.Query(ctx, sql, int(q.Station), q.Before, q.AfterStation, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PanelRow, 0)
	for rows.Next() {
		var row models.PanelRow
		var dow int
		if err := rows.Scan(&row.Station, &row.Bucket, &row.NRides, &row.HourOfDay, &dow, &row.Lon, &row.Lat); err != nil {
			return nil, err
		}
		row.DayOfWeek = time.Weekday(dow)
		out = append(out, row)
	}
	return out, rows.Err()
}

// PredictionQuery filters a prediction page. Cursor semantics match
// PanelQuery.
type PredictionQuery struct {
	Station      models.StationKey
	Limit        int
	Before       *time.Time
	AfterStation int
}

// PredictionsPage returns prediction rows newest-first, cursor-paged on
// (bucket_ts, station_id).
func (s *Store) PredictionsPage(ctx context.Context, q PredictionQuery) ([]models.PredictionRow, error) {
	sql := `
SELECT station_id, bucket_ts, n_rides, predicted, model_version
FROM ride_predictions
WHERE ($1 = 0 OR station_id = $1)
  AND ($2::timestamptz IS NULL OR bucket_ts < $2
       OR ($3 > 0 AND bucket_ts = $2 AND station_id > $3))
ORDER BY bucket_ts DESC, station_id
LIMIT $4`
	rows, err := s.pool.Query(ctx, sql, int(q.Station), q.Before, q.AfterStation, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PredictionRow, 0)
	for rows.Next() {
		var row models.PredictionRow
		if err := rows.Scan(&row.Station, &row.Bucket, &row.NRides, &row.Predicted, &row.ModelVersion); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// FitSummary returns the stored fit diagnostics for one station, or
// pgx.ErrNoRows when the station was never fitted.
func (s *Store) FitSummary(ctx context.Context, station models.StationKey) (*models.FitSummary, error) {
	var fit models.FitSummary
	var dow int
	var terms, nonEstimable []byte
	err := s.pool.QueryRow(ctx, `
SELECT station_id, model_version, train_rows, r2, residual_df, baseline_day, baseline_hour, terms, non_estimable, fitted_at
FROM station_fits
WHERE station_id = $1
ORDER BY fitted_at DESC
LIMIT 1`, int(station)).Scan(
		&fit.Station, &fit.ModelVersion, &fit.TrainRows, &fit.R2, &fit.ResidualDF,
		&dow, &fit.BaselineHour, &terms, &nonEstimable, &fit.FittedAt)
	if err != nil {
		return nil, err
	}
	fit.BaselineDay = time.Weekday(dow)
	if err := json.Unmarshal(terms, &fit.Terms); err != nil {
		return nil, err
	}
	if len(nonEstimable) > 0 {
		if err := json.Unmarshal(nonEstimable, &fit.NonEstimable); err != nil {
			return nil, err
		}
	}
	return &fit, nil
}
