package sheets

import (
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/shopspring/decimal"
)

// Tab names in the exported spreadsheet.
const (
	TabSummary    = "Summary"
	TabProjection = "Projection"
	TabInputs     = "Inputs"
)

// SummaryRow is one labelled figure on the Summary tab.
type SummaryRow struct {
	Label  string
	Amount decimal.Decimal
}

// ProjectionRow is one year on the Projection tab.
type ProjectionRow struct {
	Asset decimal.Decimal
	Year  int
	Age   int
}

// InputRow is one goal, expense or loan on the Inputs tab.
type InputRow struct {
	Kind        string
	Description string
	Amount      decimal.Decimal
	EMI         decimal.Decimal
	HasEMI      bool
}

// TabData holds everything the writer puts in the spreadsheet.
type TabData struct {
	GeneratedAt   time.Time
	Summary       []SummaryRow
	Profile       [][2]string
	Projection    []ProjectionRow
	Inputs        []InputRow
	RemainingLife int
}

// BuildTabData converts a report into spreadsheet rows.
func BuildTabData(report model.Report) TabData {
	s := report.Summary
	data := TabData{
		GeneratedAt:   report.GeneratedAt,
		RemainingLife: s.RemainingLife,
		Summary: []SummaryRow{
			{Label: "Total Existing Assets", Amount: decimal.NewFromFloat(s.TotalExistingAssets)},
			{Label: "Total Existing Liabilities", Amount: decimal.NewFromFloat(s.TotalExistingLiabilities)},
			{Label: "Current Networth", Amount: decimal.NewFromFloat(s.CurrentNetworth)},
			{Label: "Total Human Capital", Amount: decimal.NewFromFloat(s.TotalHumanCapital)},
			{Label: "Total Future Expenses", Amount: decimal.NewFromFloat(s.TotalFutureExpenses)},
			{Label: "Total Financial Goals", Amount: decimal.NewFromFloat(s.TotalFinancialGoals)},
			{Label: "Surplus / Deficit", Amount: decimal.NewFromFloat(s.SurplusDeficit)},
		},
	}

	for _, f := range model.ProfileFields {
		data.Profile = append(data.Profile, [2]string{f.Label, report.Snapshot.Profile.Get(f.Name)})
	}

	data.Projection = make([]ProjectionRow, 0, len(report.Projection))
	for _, p := range report.Projection {
		data.Projection = append(data.Projection, ProjectionRow{
			Year:  p.Year,
			Age:   p.Age,
			Asset: decimal.NewFromInt(p.Asset),
		})
	}

	for _, kind := range model.EntryKinds {
		for _, e := range report.Snapshot.Entries(kind) {
			row := InputRow{
				Kind:        kind.Title(),
				Description: e.Description,
				Amount:      decimal.NewFromFloat(e.Amount),
			}
			if e.EMI != nil {
				row.EMI = decimal.NewFromFloat(*e.EMI)
				row.HasEMI = true
			}
			data.Inputs = append(data.Inputs, row)
		}
	}

	return data
}

// SurplusLabel describes the sign of the surplus/deficit figure.
func SurplusLabel(surplus decimal.Decimal) string {
	if surplus.IsNegative() {
		return "Deficit"
	}
	return "Surplus"
}
