package regression

import (
	"fmt"
	"math"
	"sort"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// MinSplitRows is the smallest station panel that can be split at all.
const MinSplitRows = 2

// TrainTestSplit is one station's panel partitioned chronologically:
// Train is the leading fraction, Test the remainder. The two parts are
// disjoint and together equal the full panel.
type TrainTestSplit struct {
	Station models.StationKey
	Train   models.StationPanel
	Test    models.StationPanel
}

// Split partitions a station panel at floor(frac*N) in bucket order.
// The cut is a row count, not a calendar date, and involves no
// randomness: the model always trains on the past and is tested on the
// future. Fails with InsufficientDataError when either side would be
// empty.
func Split(station models.StationKey, rows models.StationPanel, frac float64) (TrainTestSplit, error) {
	if frac <= 0 || frac >= 1 {
		return TrainTestSplit{}, fmt.Errorf("split fraction %v outside (0, 1)", frac)
	}
	n := len(rows)
	if n < MinSplitRows {
		return TrainTestSplit{}, &InsufficientDataError{Station: station, Rows: n, Min: MinSplitRows}
	}

	ordered := make(models.StationPanel, n)
	copy(ordered, rows)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Bucket.Before(ordered[j].Bucket) })

	cut := int(math.Floor(frac * float64(n)))
	if cut < 1 || cut >= n {
		return TrainTestSplit{}, &InsufficientDataError{Station: station, Rows: n, Min: MinSplitRows}
	}

	return TrainTestSplit{
		Station: station,
		Train:   ordered[:cut:cut],
		Test:    ordered[cut:],
	}, nil
}
