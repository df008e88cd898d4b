package engine

import (
	"slices"
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func profile(age, lifespan, tenure int, income, assets float64) model.Profile {
	p := model.NewProfile()
	p.Age = model.IntPtr(age)
	p.LifespanYears = lifespan
	p.WorkTenureYears = model.IntPtr(tenure)
	p.CurrentAnnualGrossIncome = model.FloatPtr(income)
	p.TotalAssetGrossMarketValue = model.FloatPtr(assets)
	return p
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		snapshot model.Snapshot
		want     model.Summary
	}{
		{
			name:     "young earner with no obligations",
			snapshot: model.Snapshot{Profile: profile(30, 85, 30, 1_000_000, 5_000_000)},
			want: model.Summary{
				TotalExistingAssets: 5_000_000,
				TotalHumanCapital:   30_000_000,
				RemainingLife:       55,
				CurrentNetworth:     5_000_000,
				SurplusDeficit:      35_000_000,
			},
		},
		{
			name: "at lifespan expenses cost nothing",
			snapshot: model.Snapshot{
				Profile:  profile(85, 85, 0, 100, 0),
				Expenses: []model.Entry{model.NewExpense("Rent", 250_000)},
			},
			want: model.Summary{
				RemainingLife:       0,
				TotalFutureExpenses: 0,
			},
		},
		{
			name: "everything populated",
			snapshot: model.Snapshot{
				Profile:  profile(40, 85, 20, 500_000, 1_000_000),
				Goals:    []model.Entry{model.NewGoal("House", 3_000_000), model.NewGoal("Trip", 200_000)},
				Expenses: []model.Entry{model.NewExpense("Living", 100_000)},
				Loans: []model.Entry{
					model.NewLoan("Home", 200_000, model.FloatPtr(5000)),
					model.NewLoan("Blank", 0, nil),
				},
			},
			want: model.Summary{
				TotalExistingAssets:      1_000_000,
				TotalExistingLiabilities: 200_000,
				TotalHumanCapital:        10_000_000,
				RemainingLife:            45,
				TotalFutureExpenses:      4_500_000,
				TotalFinancialGoals:      3_200_000,
				CurrentNetworth:          800_000,
				SurplusDeficit:           (1_000_000 + 10_000_000) - (200_000 + 4_500_000 + 3_200_000),
			},
		},
		{
			name: "age past lifespan stays unclamped",
			snapshot: model.Snapshot{
				Profile:  profile(90, 85, 0, 0, 0),
				Expenses: []model.Entry{model.NewExpense("Care", 10)},
			},
			want: model.Summary{
				RemainingLife:       -5,
				TotalFutureExpenses: -50,
				SurplusDeficit:      50,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.snapshot))
		})
	}
}

func TestSummarize_Properties(t *testing.T) {
	incomes := []float64{0, 1, 750_000.5, 12_000_000}
	tenures := []int{0, 1, 17, 40}

	for _, income := range incomes {
		for _, tenure := range tenures {
			s := model.Snapshot{Profile: profile(30, 85, tenure, income, 123)}
			s.Loans = []model.Entry{
				model.NewLoan("a", income/3, nil),
				model.NewLoan("b", 0, nil),
				model.NewLoan("c", float64(tenure), model.FloatPtr(1)),
			}
			s.Goals = []model.Entry{model.NewGoal("g", 7)}
			s.Expenses = []model.Entry{model.NewExpense("e", 11)}

			got := Summarize(s)
			assert.InDelta(t, income*float64(tenure), got.TotalHumanCapital, 1e-6)
			assert.InDelta(t, income/3+float64(tenure), got.TotalExistingLiabilities, 1e-6)
			assert.InDelta(t,
				(got.TotalExistingAssets+got.TotalHumanCapital)-
					(got.TotalExistingLiabilities+got.TotalFutureExpenses+got.TotalFinancialGoals),
				got.SurplusDeficit, 1e-6)
			assert.Equal(t, got, Summarize(s), "summarize must be idempotent")
		}
	}
}

func TestEngine_RecomputeKeepsStaleSummary(t *testing.T) {
	e := New(nil)

	_, ok := e.Summary()
	assert.False(t, ok)

	full := model.Snapshot{Profile: profile(30, 85, 30, 1_000_000, 5_000_000)}
	first, ok := e.Recompute(full)
	require.True(t, ok)
	assert.InDelta(t, 35_000_000, first.SurplusDeficit, 0)

	partial := full
	partial.Profile = full.Profile.Clone()
	partial.Profile.CurrentAnnualGrossIncome = nil
	partial.Profile.TotalAssetGrossMarketValue = model.FloatPtr(1)

	stale, ok := e.Recompute(partial)
	assert.False(t, ok)
	assert.Equal(t, first, stale)

	e.Reset()
	zero, ok := e.Summary()
	assert.False(t, ok)
	assert.Equal(t, model.Summary{}, zero)
}

func TestProject(t *testing.T) {
	opts := Options{Now: fixedNow}

	t.Run("length matches remaining life", func(t *testing.T) {
		s := model.Snapshot{Profile: profile(30, 85, 30, 1_000_000, 5_000_000)}
		points := slices.Collect(Project(s, opts))
		require.Len(t, points, 56)
		assert.Equal(t, ProjectionLength(s.Profile), len(points))
		assert.Equal(t, model.YearPoint{Year: 2025, Age: 30, Asset: 5_000_000}, points[0])
		assert.Equal(t, model.YearPoint{Year: 2080, Age: 85, Asset: 35_000_000}, points[55])
	})

	t.Run("single point at lifespan", func(t *testing.T) {
		s := model.Snapshot{Profile: profile(85, 85, 10, 1, 42)}
		points := slices.Collect(Project(s, opts))
		require.Len(t, points, 1)
		assert.Equal(t, int64(42), points[0].Asset)
	})

	t.Run("loan emi and expenses draw down", func(t *testing.T) {
		s := model.Snapshot{
			Profile:  profile(40, 85, 20, 500_000, 1_000_000),
			Expenses: []model.Entry{model.NewExpense("Living", 100_000)},
			Loans:    []model.Entry{model.NewLoan("Home", 200_000, model.FloatPtr(5000))},
		}
		points := slices.Collect(Project(s, opts))
		require.Len(t, points, 46)
		assert.Equal(t, model.YearPoint{Year: 2030, Age: 45, Asset: 2_975_000}, points[5])
		// Earnings stop after the work tenure.
		assert.Equal(t, int64(1_000_000+20*500_000-105_000*25), points[25].Asset)
	})

	t.Run("no age means no projection", func(t *testing.T) {
		p := profile(30, 85, 30, 1, 1)
		p.Age = nil
		assert.Empty(t, slices.Collect(Project(model.Snapshot{Profile: p}, opts)))
		assert.Zero(t, ProjectionLength(p))
	})

	t.Run("age past lifespan means no projection", func(t *testing.T) {
		s := model.Snapshot{Profile: profile(90, 85, 0, 0, 0)}
		assert.Empty(t, slices.Collect(Project(s, opts)))
	})

	t.Run("assets are rounded", func(t *testing.T) {
		s := model.Snapshot{Profile: profile(84, 85, 1, 0.4, 10.5)}
		points := slices.Collect(Project(s, opts))
		require.Len(t, points, 2)
		assert.Equal(t, int64(11), points[0].Asset)
		assert.Equal(t, int64(11), points[1].Asset)
	})

	t.Run("halves round up, including negatives", func(t *testing.T) {
		for assets, want := range map[float64]int64{2.5: 3, -2.5: -2, -2.6: -3, -0.4: 0} {
			s := model.Snapshot{Profile: profile(85, 85, 0, 0, assets)}
			points := slices.Collect(Project(s, opts))
			require.Len(t, points, 1)
			assert.Equal(t, want, points[0].Asset, "assets %v", assets)
		}
	})

	t.Run("restartable and isolated from later edits", func(t *testing.T) {
		s := model.Snapshot{Profile: profile(80, 85, 2, 10, 0)}
		seq := Project(s, opts)
		*s.Profile.Age = 10

		first := slices.Collect(seq)
		second := slices.Collect(seq)
		assert.Equal(t, first, second)
		assert.Len(t, first, 6)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		s := model.Snapshot{Profile: profile(30, 85, 30, 1, 1)}
		count := 0
		for range Project(s, opts) {
			count++
			if count == 3 {
				break
			}
		}
		assert.Equal(t, 3, count)
	})
}
