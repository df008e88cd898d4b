package engine

import (
	"iter"
	"math"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
)

// Options controls projection output.
type Options struct {
	// Now supplies the calendar year for offset 0. Defaults to time.Now.
	Now func() time.Time
}

// Project returns the year-by-year asset projection as a lazy sequence of
// remainingLife+1 points. Each range over it recomputes from the snapshot.
//
// Earnings are flat: income is added once per year while the offset is below
// the work tenure. The income growth rate is not applied. Expenses and loan EMIs
// are drawn down every year. The sequence is empty without an age or when the
// lifespan is already behind the age.
func Project(s model.Snapshot, opts Options) iter.Seq[model.YearPoint] {
	p := s.Profile.Clone()
	expenses := sumAmounts(s.Expenses)
	emis := sumEMIs(s.Loans)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(yield func(model.YearPoint) bool) {
		if p.Age == nil {
			return
		}
		remaining := p.RemainingLife()
		if remaining < 0 {
			return
		}

		age := *p.Age
		income := model.FloatValue(p.CurrentAnnualGrossIncome)
		tenure := model.IntValue(p.WorkTenureYears)
		assets := model.FloatValue(p.TotalAssetGrossMarketValue)
		startYear := now().Year()
		drawdown := expenses + emis

		var earned float64
		for y := 0; y <= remaining; y++ {
			value := assets + earned - drawdown*float64(y)
			point := model.YearPoint{
				Year:  startYear + y,
				Age:   age + y,
				Asset: roundHalfUp(value),
			}
			if !yield(point) {
				return
			}
			if y < tenure {
				earned += income
			}
		}
	}
}

// roundHalfUp rounds to the nearest whole rupee with halves going up, so
// -2.5 becomes -2.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// ProjectionLength is the number of points Project yields.
func ProjectionLength(p model.Profile) int {
	if p.Age == nil || p.RemainingLife() < 0 {
		return 0
	}
	return p.RemainingLife() + 1
}
