package sheets

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testReport() model.Report {
	p := model.NewProfile()
	p.Age = model.IntPtr(30)
	p.CurrentAnnualGrossIncome = model.FloatPtr(1_000_000)
	p.WorkTenureYears = model.IntPtr(30)
	p.TotalAssetGrossMarketValue = model.FloatPtr(5_000_000)

	return model.Report{
		GeneratedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Snapshot: model.Snapshot{
			Profile: p,
			Goals:   []model.Entry{model.NewGoal("House", 2_000_000)},
			Loans:   []model.Entry{model.NewLoan("Car", 300_000, model.FloatPtr(12_000))},
		},
		Projection: []model.YearPoint{
			{Year: 2025, Age: 30, Asset: 5_000_000},
			{Year: 2026, Age: 31, Asset: 5_988_000},
		},
		Summary: model.Summary{
			TotalExistingAssets:      5_000_000,
			TotalExistingLiabilities: 300_000,
			CurrentNetworth:          4_700_000,
			SurplusDeficit:           -1_250_000.5,
			RemainingLife:            55,
		},
	}
}

func TestBuildTabData(t *testing.T) {
	data := BuildTabData(testReport())

	require.Len(t, data.Summary, 7)
	assert.Equal(t, "Total Existing Assets", data.Summary[0].Label)
	assert.Equal(t, "-1250000.5", data.Summary[6].Amount.String())
	assert.Equal(t, "Deficit", SurplusLabel(data.Summary[6].Amount))
	assert.Equal(t, 55, data.RemainingLife)

	require.Len(t, data.Projection, 2)
	assert.Equal(t, int64(5_988_000), data.Projection[1].Asset.IntPart())

	require.Len(t, data.Inputs, 2)
	assert.Equal(t, "Goal", data.Inputs[0].Kind)
	assert.False(t, data.Inputs[0].HasEMI)
	assert.Equal(t, "Loan", data.Inputs[1].Kind)
	assert.True(t, data.Inputs[1].HasEMI)
	assert.Equal(t, "12000", data.Inputs[1].EMI.String())

	assert.Len(t, data.Profile, len(model.ProfileFields))
}

func TestValueLayouts(t *testing.T) {
	data := BuildTabData(testReport())

	summary := SummaryValues(data)
	assert.Equal(t, []any{"Life Sheet", "Mar 1, 2025"}, summary[0])
	assert.Equal(t, []any{"Total Existing Assets", 5_000_000.0}, summary[1])

	projection := ProjectionValues(data)
	require.Len(t, projection, 3)
	assert.Equal(t, []any{"Year", "Age", "Projected Assets"}, projection[0])
	assert.Equal(t, []any{2026, 31, int64(5_988_000)}, projection[2])

	inputs := InputValues(data)
	require.Len(t, inputs, 3)
	assert.Equal(t, []any{"Goal", "House", 2_000_000.0, ""}, inputs[1])
	assert.Equal(t, []any{"Loan", "Car", 300_000.0, 12_000.0}, inputs[2])
}

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	require.NoError(t, m.Write(context.Background(), testReport()))

	boom := errors.New("boom")
	m.SetWriteError(boom)
	require.ErrorIs(t, m.Write(context.Background(), testReport()), boom)

	calls := m.GetWriteCalls()
	require.Len(t, calls, 2)
	assert.NoError(t, calls[0].Error)
	assert.Equal(t, 2, m.WriteCallCount)

	m.Reset()
	assert.Nil(t, m.LastReport)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{RefreshToken: "refresh", TokenType: "Bearer"}))

	token, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", token.RefreshToken)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
