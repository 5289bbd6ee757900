package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

func panelRows(station models.StationKey, buckets ...time.Time) []models.PanelRow {
	rows := make([]models.PanelRow, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, models.PanelRow{
			Station:   station,
			Bucket:    b,
			HourOfDay: b.Hour(),
			DayOfWeek: b.Weekday(),
		})
	}
	return rows
}

func TestValidatePasses(t *testing.T) {
	rows := append(
		panelRows(1, hourAt(1, 0), hourAt(1, 1), hourAt(1, 2)),
		panelRows(2, hourAt(1, 0), hourAt(1, 1), hourAt(1, 2))...,
	)
	if err := Validate(rows); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateDuplicateKey(t *testing.T) {
	rows := panelRows(1, hourAt(1, 0), hourAt(1, 1), hourAt(1, 1))
	err := Validate(rows)
	var dupErr *DuplicateKeyError
	if !errors.As(err, &dupErr) {
		t.Fatalf("err = %v, want DuplicateKeyError", err)
	}
	if len(dupErr.Keys) != 1 {
		t.Fatalf("duplicate keys = %d, want 1", len(dupErr.Keys))
	}
	if dupErr.Keys[0].Station != 1 || !dupErr.Keys[0].Bucket.Equal(hourAt(1, 1)) {
		t.Errorf("offending key = %+v, want station 1 at 01:00", dupErr.Keys[0])
	}
}

func TestValidateGap(t *testing.T) {
	// 01:00 then 03:00, 02:00 missing.
	rows := panelRows(7, hourAt(1, 1), hourAt(1, 3))
	err := Validate(rows)
	var gapErr *GapOrOverlapError
	if !errors.As(err, &gapErr) {
		t.Fatalf("err = %v, want GapOrOverlapError", err)
	}
	if gapErr.Station != 7 {
		t.Errorf("Station = %d, want 7", gapErr.Station)
	}
	if !gapErr.Prev.Equal(hourAt(1, 1)) || !gapErr.Next.Equal(hourAt(1, 3)) {
		t.Errorf("boundary = %s -> %s, want 01:00 -> 03:00", gapErr.Prev, gapErr.Next)
	}
}

func TestValidateGapOnlyNamedStation(t *testing.T) {
	rows := append(
		panelRows(1, hourAt(1, 0), hourAt(1, 1)),
		panelRows(2, hourAt(1, 0), hourAt(1, 2))...,
	)
	err := Validate(rows)
	var gapErr *GapOrOverlapError
	if !errors.As(err, &gapErr) {
		t.Fatalf("err = %v, want GapOrOverlapError", err)
	}
	if gapErr.Station != 2 {
		t.Errorf("Station = %d, want 2 (station 1 is contiguous)", gapErr.Station)
	}
}

func TestValidateIdempotent(t *testing.T) {
	rows := panelRows(1, hourAt(1, 1), hourAt(1, 3))
	first := Validate(rows)
	second := Validate(rows)
	if (first == nil) != (second == nil) {
		t.Fatalf("pass/fail changed between runs: %v then %v", first, second)
	}
	if first.Error() != second.Error() {
		t.Errorf("error set changed between runs:\n%q\n%q", first, second)
	}
}

// A sparse record set joined over a complete skeleton self-heals: missing
// hours become zero rows, so the contiguity check passes. Only a broken
// skeleton can produce a gap.
func TestValidateSelfHealsViaSkeleton(t *testing.T) {
	grid, err := BuildGrid([]models.StationKey{1}, hourAt(1, 0), hourAt(1, 5))
	if err != nil {
		t.Fatalf("BuildGrid() error: %v", err)
	}
	counts, err := AggregateHourly([]models.TripRecord{
		trip(1, hourAt(1, 1)),
		trip(1, hourAt(1, 3)), // hour 2 has no trips
	})
	if err != nil {
		t.Fatalf("AggregateHourly() error: %v", err)
	}
	rows := Join(grid, counts)
	if err := Validate(rows); err != nil {
		t.Errorf("Validate() = %v, want nil: skeleton fills the 02:00 gap with a zero row", err)
	}

	// Drop the zero row to simulate a skeleton built wrong: now it must fail.
	broken := rows[:0:0]
	for _, row := range rows {
		if row.Bucket.Equal(hourAt(1, 2)) {
			continue
		}
		broken = append(broken, row)
	}
	var gapErr *GapOrOverlapError
	if err := Validate(broken); !errors.As(err, &gapErr) {
		t.Errorf("Validate(broken) = %v, want GapOrOverlapError", err)
	}
}
