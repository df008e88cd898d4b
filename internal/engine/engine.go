// Package engine computes the aggregate summary and the year-by-year asset projection from an input snapshot.
package engine

import (
	"log/slog"
	"sync"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
)

// Summarize computes the aggregate summary. It is pure and never fails;
// blank values count as 0 and remaining life is not clamped.
func Summarize(s model.Snapshot) model.Summary {
	p := s.Profile

	assets := model.FloatValue(p.TotalAssetGrossMarketValue)
	liabilities := sumAmounts(s.Loans)
	humanCapital := model.FloatValue(p.CurrentAnnualGrossIncome) * float64(model.IntValue(p.WorkTenureYears))
	remaining := p.RemainingLife()
	futureExpenses := sumAmounts(s.Expenses) * float64(remaining)
	goals := sumAmounts(s.Goals)

	return model.Summary{
		TotalExistingAssets:      assets,
		TotalExistingLiabilities: liabilities,
		TotalHumanCapital:        humanCapital,
		RemainingLife:            remaining,
		TotalFutureExpenses:      futureExpenses,
		TotalFinancialGoals:      goals,
		CurrentNetworth:          assets - liabilities,
		SurplusDeficit:           (assets + humanCapital) - (liabilities + futureExpenses + goals),
	}
}

// Engine holds the last computed summary so partially filled forms keep showing it.
type Engine struct {
	logger   *slog.Logger
	last     model.Summary
	mu       sync.Mutex
	computed bool
}

// New creates an engine with an empty summary.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: common.ComponentLogger(logger, "engine")}
}

// Recompute refreshes the summary when age and income are both present.
// Otherwise it returns the previous summary unchanged and false.
func (e *Engine) Recompute(s model.Snapshot) (model.Summary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !s.Profile.Complete() {
		e.logger.Debug("summary left stale", "has_age", s.Profile.Age != nil,
			"has_income", s.Profile.CurrentAnnualGrossIncome != nil)
		return e.last, false
	}

	e.last = Summarize(s)
	e.computed = true
	return e.last, true
}

// Summary returns the last computed summary and whether one was ever computed.
func (e *Engine) Summary() (model.Summary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last, e.computed
}

// Reset zeroes the summary.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = model.Summary{}
	e.computed = false
}

func sumAmounts(entries []model.Entry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

func sumEMIs(entries []model.Entry) float64 {
	var total float64
	for _, e := range entries {
		total += e.EMIValue()
	}
	return total
}
