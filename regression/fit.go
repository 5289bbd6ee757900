package regression

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// StationModel is a fitted ride-count regression for a single station:
// an intercept plus one dummy coefficient per observed day-of-week and
// hour-of-day level, relative to the station's baseline levels. A model
// only ever applies to its own station's rows.
type StationModel struct {
	Station models.StationKey

	intercept float64
	dayCoef   map[time.Weekday]float64
	hourCoef  map[int]float64

	summary models.FitSummary
}

// Fit estimates a station's model from its training rows by ordinary
// least squares on dummy-coded day_of_week and hour_of_day. Levels absent
// from the training data get no column, and observed levels whose dummy
// column is a linear combination of the columns before it (levels that
// always co-occur in the training rows) are dropped too: both kinds are
// reported in the summary as non-estimable instead of producing a
// singular design. Stations are fitted in complete isolation; nothing
// is pooled.
func Fit(station models.StationKey, train models.StationPanel, version string) (*StationModel, error) {
	if len(train) == 0 {
		return nil, &InsufficientDataError{Station: station, Rows: 0, Min: 1}
	}
	for _, row := range train {
		if row.Station != station {
			return nil, &StationMismatchError{ModelStation: station, RowStation: row.Station}
		}
	}

	// The baseline is the lowest observed level of each factor, so a
	// training set that never sees the nominal baseline (Sunday, hour 0)
	// still yields a full-rank design.
	days, hours := observedLevels(train)
	baseDay, baseHour := days[0], hours[0]

	// Column layout: intercept, then non-baseline day dummies, then
	// non-baseline hour dummies. Columns that carry no direction beyond
	// the ones before them are aliased and never enter the design.
	dayCols, hourCols, aliased := estimableColumns(train, days[1:], hours[1:])
	p := 1 + len(dayCols) + len(hourCols)
	n := len(train)

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, row := range train {
		x.Set(i, 0, 1)
		for j, d := range dayCols {
			if row.DayOfWeek == d {
				x.Set(i, 1+j, 1)
			}
		}
		for j, h := range hourCols {
			if row.HourOfDay == h {
				x.Set(i, 1+len(dayCols)+j, 1)
			}
		}
		y.SetVec(i, float64(row.NRides))
	}

	var beta mat.VecDense
	degraded := false
	if err := beta.SolveVec(x, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("station %d: least squares solve: %w", station, err)
		}
		// Ill-conditioned but solved: keep coefficients, skip the
		// covariance-based diagnostics.
		degraded = true
	}

	model := &StationModel{
		Station:   station,
		intercept: beta.AtVec(0),
		dayCoef:   make(map[time.Weekday]float64, len(dayCols)),
		hourCoef:  make(map[int]float64, len(hourCols)),
	}
	for j, d := range dayCols {
		model.dayCoef[d] = beta.AtVec(1 + j)
	}
	for j, h := range hourCols {
		model.hourCoef[h] = beta.AtVec(1 + len(dayCols) + j)
	}

	fitted := make([]float64, n)
	actual := make([]float64, n)
	rss := 0.0
	for i, row := range train {
		fitted[i] = model.At(row.DayOfWeek, row.HourOfDay)
		actual[i] = float64(row.NRides)
		resid := actual[i] - fitted[i]
		rss += resid * resid
	}

	df := n - p
	if df < 0 {
		df = 0
	}
	stdErrs := make([]*float64, p)
	if !degraded && df > 0 {
		sigma2 := rss / float64(df)
		var xtx, xtxInv mat.Dense
		xtx.Mul(x.T(), x)
		if err := xtxInv.Inverse(&xtx); err == nil {
			for j := 0; j < p; j++ {
				se := math.Sqrt(sigma2 * xtxInv.At(j, j))
				stdErrs[j] = &se
			}
		}
	}

	r2 := 0.0
	if stat.Variance(actual, nil) > 0 {
		r2 = stat.RSquaredFrom(fitted, actual, nil)
	}

	terms := make([]models.FitTerm, 0, p)
	terms = append(terms, models.FitTerm{Name: "intercept", Coef: model.intercept, StdErr: stdErrs[0]})
	for j, d := range dayCols {
		terms = append(terms, models.FitTerm{
			Name:   fmt.Sprintf("day_of_week=%s", d),
			Coef:   model.dayCoef[d],
			StdErr: stdErrs[1+j],
		})
	}
	for j, h := range hourCols {
		terms = append(terms, models.FitTerm{
			Name:   fmt.Sprintf("hour_of_day=%d", h),
			Coef:   model.hourCoef[h],
			StdErr: stdErrs[1+len(dayCols)+j],
		})
	}

	model.summary = models.FitSummary{
		Station:      station,
		ModelVersion: version,
		TrainRows:    n,
		Terms:        terms,
		R2:           r2,
		ResidualDF:   df,
		BaselineDay:  baseDay,
		BaselineHour: baseHour,
		NonEstimable: append(missingLevels(days, hours), aliased...),
		FittedAt:     time.Now().UTC(),
	}
	return model, nil
}

// At evaluates the model for one feature combination. Levels that were
// not estimable fall back to the baseline (coefficient zero).
func (m *StationModel) At(day time.Weekday, hour int) float64 {
	return m.intercept + m.dayCoef[day] + m.hourCoef[hour]
}

// Summary returns the fit diagnostics captured at Fit time.
func (m *StationModel) Summary() models.FitSummary {
	return m.summary
}

// observedLevels returns the sorted distinct day and hour levels present
// in the training rows. The first element of each is the baseline.
func observedLevels(train models.StationPanel) ([]time.Weekday, []int) {
	daySet := make(map[time.Weekday]struct{})
	hourSet := make(map[int]struct{})
	for _, row := range train {
		daySet[row.DayOfWeek] = struct{}{}
		hourSet[row.HourOfDay] = struct{}{}
	}
	days := make([]time.Weekday, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	hours := make([]int, 0, len(hourSet))
	for h := range hourSet {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return days, hours
}

// estimableColumns filters the candidate dummy levels down to the ones
// whose columns are linearly independent of the intercept and of every
// column accepted before them. A level that always co-occurs with
// another (say, a weekday only ever observed at a single hour) produces
// a dependent column; keeping it would make the design rank deficient
// and the solve meaningless, so it is dropped and named instead.
func estimableColumns(train models.StationPanel, days []time.Weekday, hours []int) ([]time.Weekday, []int, []string) {
	n := len(train)
	basis := &spanBasis{}
	intercept := make([]float64, n)
	for i := range intercept {
		intercept[i] = 1
	}
	basis.add(intercept)

	keptDays := make([]time.Weekday, 0, len(days))
	keptHours := make([]int, 0, len(hours))
	var aliased []string
	for _, d := range days {
		col := make([]float64, n)
		for i, row := range train {
			if row.DayOfWeek == d {
				col[i] = 1
			}
		}
		if basis.add(col) {
			keptDays = append(keptDays, d)
		} else {
			aliased = append(aliased, fmt.Sprintf("day_of_week=%s", d))
		}
	}
	for _, h := range hours {
		col := make([]float64, n)
		for i, row := range train {
			if row.HourOfDay == h {
				col[i] = 1
			}
		}
		if basis.add(col) {
			keptHours = append(keptHours, h)
		} else {
			aliased = append(aliased, fmt.Sprintf("hour_of_day=%d", h))
		}
	}
	return keptDays, keptHours, aliased
}

// spanBasis holds an orthonormal basis for the span of the accepted
// columns, grown by modified Gram-Schmidt.
type spanBasis struct {
	q [][]float64
}

// add reports whether col contributes a new direction to the span, and
// extends the basis when it does. Columns within tolerance of the
// existing span are rejected.
func (b *spanBasis) add(col []float64) bool {
	v := make([]float64, len(col))
	copy(v, col)
	scale := floats.Norm(col, 2)
	for _, q := range b.q {
		floats.AddScaled(v, -floats.Dot(v, q), q)
	}
	norm := floats.Norm(v, 2)
	if norm <= 1e-8*math.Max(scale, 1) {
		return false
	}
	floats.Scale(1/norm, v)
	b.q = append(b.q, v)
	return true
}

// missingLevels names every enumerable level with no training support.
func missingLevels(days []time.Weekday, hours []int) []string {
	daySet := make(map[time.Weekday]struct{}, len(days))
	for _, d := range days {
		daySet[d] = struct{}{}
	}
	hourSet := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		hourSet[h] = struct{}{}
	}
	var missing []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if _, ok := daySet[d]; !ok {
			missing = append(missing, fmt.Sprintf("day_of_week=%s", d))
		}
	}
	for h := 0; h < 24; h++ {
		if _, ok := hourSet[h]; !ok {
			missing = append(missing, fmt.Sprintf("hour_of_day=%d", h))
		}
	}
	return missing
}
