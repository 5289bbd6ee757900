// Package ingest reads raw bysykkel trip CSVs into memory. One file per
// month is the publisher's partitioning; the loader just concatenates.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// Column names expected in the trip CSV header. Extra columns are ignored.
const (
	colStartedAt = "started_at"
	colStationID = "start_station_id"
	colLongitude = "start_station_longitude"
	colLatitude  = "start_station_latitude"
)

// Timestamp layouts seen in the published exports, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
}

// LoadDir reads every *.csv under dir and concatenates the parsed trips.
// Returns the records plus the number of malformed rows skipped across
// all files. Fails if no CSV file yields any record.
func LoadDir(dir string) ([]models.TripRecord, int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, 0, err
	}
	if len(paths) == 0 {
		return nil, 0, fmt.Errorf("no trip CSV files in %s", dir)
	}
	sort.Strings(paths)

	var records []models.TripRecord
	skipped := 0
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, skipped, err
		}
		recs, skip, err := ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, skipped, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if skip > 0 {
			log.Printf("ingest: %s: skipped %d malformed rows", filepath.Base(path), skip)
		}
		records = append(records, recs...)
		skipped += skip
	}
	if len(records) == 0 {
		return nil, skipped, fmt.Errorf("no usable trip records in %s", dir)
	}
	return records, skipped, nil
}

// ReadCSV parses one trip CSV. The header row is mandatory and maps the
// required columns by name. Rows that fail to parse are skipped and
// counted, not fatal. Station ids are normalized from the float form the
// exports use ("35.0") to the canonical integer key.
func ReadCSV(r io.Reader) ([]models.TripRecord, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colStartedAt, colStationID, colLongitude, colLatitude} {
		if _, ok := idx[required]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", required)
		}
	}

	var records []models.TripRecord
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		rec, ok := parseRow(row, idx)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func parseRow(row []string, idx map[string]int) (models.TripRecord, bool) {
	get := func(col string) (string, bool) {
		i := idx[col]
		if i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	rawTS, ok := get(colStartedAt)
	if !ok {
		return models.TripRecord{}, false
	}
	startedAt, ok := parseTime(rawTS)
	if !ok {
		return models.TripRecord{}, false
	}

	rawID, ok := get(colStationID)
	if !ok {
		return models.TripRecord{}, false
	}
	station, ok := parseStationKey(rawID)
	if !ok {
		return models.TripRecord{}, false
	}

	rawLon, okLon := get(colLongitude)
	rawLat, okLat := get(colLatitude)
	if !okLon || !okLat {
		return models.TripRecord{}, false
	}
	lon, errLon := strconv.ParseFloat(rawLon, 64)
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	if errLon != nil || errLat != nil {
		return models.TripRecord{}, false
	}

	return models.TripRecord{
		Station:   station,
		StartedAt: startedAt.UTC(),
		Lon:       lon,
		Lat:       lat,
	}, true
}

func parseTime(raw string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseStationKey accepts both "35" and "35.0" forms of a station id.
func parseStationKey(raw string) (models.StationKey, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		return models.StationKey(n), true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return models.StationKey(int(f)), true
}
