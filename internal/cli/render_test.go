package cli

import (
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(model.Summary{
		TotalExistingAssets: 5_000_000,
		CurrentNetworth:     4_600_000,
		SurplusDeficit:      -1_500_000,
		RemainingLife:       55,
	}, []string{"age is negative"})

	assert.Contains(t, out, "Total existing assets")
	assert.Contains(t, out, "₹50.0L")
	assert.Contains(t, out, "Deficit")
	assert.Contains(t, out, "-₹15.0L")
	assert.Contains(t, out, "55 years")
	assert.Contains(t, out, "age is negative")
}

func TestSurplusLabel(t *testing.T) {
	assert.Equal(t, "Surplus", SurplusLabel(0))
	assert.Equal(t, "Surplus", SurplusLabel(10))
	assert.Equal(t, "Deficit", SurplusLabel(-1))
}

func TestRenderProfile(t *testing.T) {
	p := model.NewProfile()
	p.Age = model.IntPtr(30)

	out := RenderProfile(p)
	assert.Contains(t, out, "Age")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "Lifespan (years)")
	assert.Contains(t, out, "85")
}

func TestRenderEntries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Contains(t, RenderEntries(model.KindGoal, nil, nil), "No goals yet.")
	})

	t.Run("loans show emi", func(t *testing.T) {
		loans := []model.Entry{
			model.NewLoan("Car loan", 400_000, model.FloatPtr(12_000)),
			model.NewLoan("Card", 20_000, nil),
		}
		keys := []model.EntryKey{model.PersistedKey("42"), model.LocalKey(1)}

		out := RenderEntries(model.KindLoan, loans, keys)
		assert.Contains(t, out, "EMI")
		assert.Contains(t, out, "Car loan")
		assert.Contains(t, out, "₹4,00,000")
		assert.Contains(t, out, "₹12,000")
		assert.Contains(t, out, keys[0].String())
		assert.Contains(t, out, keys[1].String())
	})

	t.Run("goals have no emi column", func(t *testing.T) {
		out := RenderEntries(model.KindGoal, []model.Entry{model.NewGoal("House", 5_000_000)}, nil)
		assert.NotContains(t, out, "EMI")
		assert.Contains(t, out, "₹50,00,000")
	})
}

func TestRenderProjection(t *testing.T) {
	assert.Contains(t, RenderProjection(nil), "No projection")

	out := RenderProjection([]model.YearPoint{
		{Year: 2025, Age: 30, Asset: 5_000_000},
		{Year: 2026, Age: 31, Asset: 6_500_000},
	})
	assert.Contains(t, out, "Year")
	assert.Contains(t, out, "2026")
	assert.Contains(t, out, "₹65,00,000")
	assert.Contains(t, out, "₹65.0L")
}

func TestRenderScenarios(t *testing.T) {
	assert.Contains(t, RenderScenarios(nil), "No scenarios")

	out := RenderScenarios([]model.Scenario{{
		Name:      "baseline",
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Summary:   model.Summary{CurrentNetworth: 2_500_000, SurplusDeficit: -300_000},
	}})
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "₹25.0L")
	assert.Contains(t, out, "-₹3.0L")
}
