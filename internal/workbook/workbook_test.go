package workbook

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReport() model.Report {
	p := model.NewProfile()
	p.Age = model.IntPtr(30)
	p.CurrentAnnualGrossIncome = model.FloatPtr(1_200_000)

	return model.Report{
		GeneratedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Snapshot: model.Snapshot{
			Profile: p,
			Goals:   []model.Entry{model.NewGoal("House", 5_000_000)},
			Loans:   []model.Entry{model.NewLoan("Car loan", 400_000, model.FloatPtr(12_000))},
		},
		Summary: model.Summary{
			TotalExistingAssets: 5_000_000,
			CurrentNetworth:     4_600_000,
			SurplusDeficit:      -250_000,
			RemainingLife:       55,
		},
		Projection: []model.YearPoint{
			{Year: 2025, Age: 30, Asset: 5_000_000},
			{Year: 2026, Age: 31, Asset: 6_500_000},
		},
	}
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWriter_Stream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, nil).Write(context.Background(), testReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheets.TabSummary, sheets.TabProjection, sheets.TabInputs}, f.GetSheetList())

	assert.Equal(t, "Life Sheet", raw(t, f, sheets.TabSummary, "A1"))
	assert.Equal(t, "Total Existing Assets", raw(t, f, sheets.TabSummary, "A2"))
	assert.Equal(t, "5000000", raw(t, f, sheets.TabSummary, "B2"))

	rows, err := f.GetRows(sheets.TabProjection)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Year", "Age", "Projected Assets"}, rows[0])
	assert.Equal(t, "2026", raw(t, f, sheets.TabProjection, "A3"))
	assert.Equal(t, "6500000", raw(t, f, sheets.TabProjection, "C3"))

	assert.Equal(t, "Goal", raw(t, f, sheets.TabInputs, "A2"))
	assert.Equal(t, "House", raw(t, f, sheets.TabInputs, "B2"))
	assert.Equal(t, "Car loan", raw(t, f, sheets.TabInputs, "B3"))
	assert.Equal(t, "12000", raw(t, f, sheets.TabInputs, "D3"))
}

func TestWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, NewFileWriter(path, nil).Write(context.Background(), testReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, "Summary", f.GetSheetName(0))
}

func TestWriter_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		err := NewFileWriter("", nil).Write(context.Background(), testReport())
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var buf bytes.Buffer
		assert.ErrorIs(t, NewWriter(&buf, nil).Write(ctx, testReport()), context.Canceled)
		assert.Zero(t, buf.Len())
	})
}

func TestBuild_EmptyProjection(t *testing.T) {
	report := testReport()
	report.Projection = nil

	f, err := Build(report)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheets.TabProjection)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
