package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// summaryLines pairs each summary figure with its label, in display order.
func summaryLines(s model.Summary) [][2]string {
	return [][2]string{
		{"Total existing assets", FormatCurrency(s.TotalExistingAssets)},
		{"Total existing liabilities", FormatCurrency(s.TotalExistingLiabilities)},
		{"Human capital", FormatCurrency(s.TotalHumanCapital)},
		{"Future expenses", FormatCurrency(s.TotalFutureExpenses)},
		{"Financial goals", FormatCurrency(s.TotalFinancialGoals)},
		{"Current net worth", StyleSigned(s.CurrentNetworth, FormatCurrency(s.CurrentNetworth))},
		{SurplusLabel(s.SurplusDeficit), StyleSigned(s.SurplusDeficit, FormatCurrency(s.SurplusDeficit))},
		{"Remaining life", strconv.Itoa(s.RemainingLife) + " years"},
	}
}

// SurplusLabel names the bottom line by its sign.
func SurplusLabel(v float64) string {
	if v < 0 {
		return "Deficit"
	}
	return "Surplus"
}

// RenderSummary draws the summary box. Warnings are listed under it.
func RenderSummary(s model.Summary, warnings []string) string {
	label := lipgloss.NewStyle().Width(28)
	rows := make([]string, 0, 8)
	for _, line := range summaryLines(s) {
		rows = append(rows, label.Render(line[0])+line[1])
	}
	out := RenderBox(ChartIcon+" Summary", strings.Join(rows, "\n"))
	for _, w := range warnings {
		out += "\n" + FormatWarning(w)
	}
	return out
}

// RenderIncomplete is shown in place of the summary when age or income is missing.
func RenderIncomplete() string {
	return FormatInfo("Enter your age and annual income to see the summary.")
}

// RenderProfile lists the profile fields with their current values.
func RenderProfile(p model.Profile) string {
	label := lipgloss.NewStyle().Width(32)
	var b strings.Builder
	b.WriteString(FormatTitle("Profile") + "\n")
	for _, spec := range model.ProfileFields {
		v := p.Get(spec.Name)
		if v == "" {
			v = SubtleStyle.Render("-")
		}
		fmt.Fprintf(&b, "%s%s\n", label.Render(spec.Label), v)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderEntries renders one collection as a numbered table. The key column
// holds what edit and rm accept.
func RenderEntries(kind model.EntryKind, entries []model.Entry, keys []model.EntryKey) string {
	title := FormatTitle(kind.Title() + "s")
	if len(entries) == 0 {
		return title + "\n" + SubtleStyle.Render("No "+kind.Plural()+" yet.")
	}

	headers := []string{"#", "Key", "Description", "Amount"}
	if kind == model.KindLoan {
		headers = append(headers, "EMI")
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		key := ""
		if i < len(keys) {
			key = keys[i].String()
		}
		row := []string{strconv.Itoa(i + 1), key, e.Description, FormatAmount(e.Amount)}
		if kind == model.KindLoan {
			emi := "-"
			if e.EMI != nil {
				emi = FormatAmount(*e.EMI)
			}
			row = append(row, emi)
		}
		rows = append(rows, row)
	}
	return title + "\n" + renderTable(headers, rows)
}

// RenderProjection renders the yearly asset series.
func RenderProjection(points []model.YearPoint) string {
	if len(points) == 0 {
		return FormatInfo("No projection: remaining life is zero or negative.")
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Age),
			FormatAmount(float64(p.Asset)),
			FormatCurrency(float64(p.Asset)),
		})
	}
	return renderTable([]string{"Year", "Age", "Asset", ""}, rows)
}

// RenderScenarios lists saved scenarios, newest last.
func RenderScenarios(scenarios []model.Scenario) string {
	if len(scenarios) == 0 {
		return SubtleStyle.Render("No scenarios saved yet.")
	}
	rows := make([][]string, 0, len(scenarios))
	for _, sc := range scenarios {
		rows = append(rows, []string{
			sc.Name,
			sc.CreatedAt.Local().Format("2006-01-02 15:04"),
			FormatCurrency(sc.Summary.CurrentNetworth),
			StyleSigned(sc.Summary.SurplusDeficit, FormatCurrency(sc.Summary.SurplusDeficit)),
		})
	}
	return renderTable([]string{"Name", "Saved", "Net worth", "Surplus/Deficit"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = TableCellStyle.Width(widths[i] + 2).Render(h)
	}
	lines := []string{TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...))}
	for _, row := range rows {
		for i, cell := range row {
			cells[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}
