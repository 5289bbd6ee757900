package regression

import (
	"fmt"
	"strings"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// InsufficientDataError reports a station panel too short to split into a
// training prefix and a testing suffix.
type InsufficientDataError struct {
	Station models.StationKey
	Rows    int
	Min     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("station %d: %d rows, need at least %d to split", e.Station, e.Rows, e.Min)
}

// NonEstimableCoefficientError reports that the training design matrix was
// rank deficient beyond what dropping unobserved levels can repair.
type NonEstimableCoefficientError struct {
	Station models.StationKey
	Levels  []string
}

func (e *NonEstimableCoefficientError) Error() string {
	return fmt.Sprintf("station %d: non-estimable coefficients: %s", e.Station, strings.Join(e.Levels, ", "))
}

// StationMismatchError reports an attempt to apply a model to rows that
// belong to another station.
type StationMismatchError struct {
	ModelStation models.StationKey
	RowStation   models.StationKey
}

func (e *StationMismatchError) Error() string {
	return fmt.Sprintf("model for station %d applied to rows of station %d", e.ModelStation, e.RowStation)
}
