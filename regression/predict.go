package regression

import (
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// Predict applies a station's model to that station's test rows, one
// prediction per row, aligned with the actual counts. Rows belonging to
// another station are a misuse and are rejected before any prediction is
// produced. Outputs are raw linear-model values: negative or fractional
// predictions are possible and are passed through unchanged.
func Predict(model *StationModel, test models.StationPanel, version string) ([]models.PredictionRow, error) {
	for _, row := range test {
		if row.Station != model.Station {
			return nil, &StationMismatchError{ModelStation: model.Station, RowStation: row.Station}
		}
	}
	out := make([]models.PredictionRow, 0, len(test))
	for _, row := range test {
		out = append(out, models.PredictionRow{
			Station:      row.Station,
			Bucket:       row.Bucket,
			NRides:       row.NRides,
			Predicted:    model.At(row.DayOfWeek, row.HourOfDay),
			ModelVersion: version,
		})
	}
	return out, nil
}
