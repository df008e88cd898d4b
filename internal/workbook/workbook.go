// Package workbook exports a report as an .xlsx file with Summary,
// Projection and Inputs sheets.
package workbook

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/sheets"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
	// amountFormat groups digits the Indian way: 12,34,567.
	amountFormat = `[>=10000000]##\,##\,##\,##0;[>=100000]##\,##\,##0;##,##0`
)

// Writer implements service.ReportWriter for local .xlsx files.
type Writer struct {
	out    io.Writer
	logger *slog.Logger
	path   string
}

// NewFileWriter writes the workbook to path, replacing any existing file.
func NewFileWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: common.ComponentLogger(logger, "workbook")}
}

// NewWriter streams the workbook to out.
func NewWriter(out io.Writer, logger *slog.Logger) *Writer {
	return &Writer{out: out, logger: common.ComponentLogger(logger, "workbook")}
}

// Write builds the workbook and saves it.
func (w *Writer) Write(ctx context.Context, report model.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := Build(report)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			w.logger.Warn("Failed to close workbook", "error", closeErr)
		}
	}()

	if w.out != nil {
		if err := f.Write(w.out); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	} else {
		if w.path == "" {
			return fmt.Errorf("%w: workbook path", common.ErrMissingConfig)
		}
		if err := f.SaveAs(w.path); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}
	}

	w.logger.Info("Workbook export completed", "path", w.path, "projection_years", len(report.Projection))
	return nil
}

// Build lays the report out on three sheets.
func Build(report model.Report) (*excelize.File, error) {
	data := sheets.BuildTabData(report)
	f := excelize.NewFile()

	b := builder{f: f}
	b.init()
	b.sheet(sheets.TabSummary, sheets.SummaryValues(data), map[string]float64{"A": 28, "B": 18})
	b.sheet(sheets.TabProjection, sheets.ProjectionValues(data), map[string]float64{"A": 8, "B": 6, "C": 18})
	b.sheet(sheets.TabInputs, sheets.InputValues(data), map[string]float64{"A": 10, "B": 30, "C": 16, "D": 14})

	b.formatAmounts(sheets.TabSummary, "B", 2, len(data.Summary)+1)
	b.formatAmounts(sheets.TabProjection, "C", 2, len(data.Projection)+1)
	b.formatAmounts(sheets.TabInputs, "C", 2, len(data.Inputs)+1)
	b.formatAmounts(sheets.TabInputs, "D", 2, len(data.Inputs)+1)
	b.chart(len(data.Projection))

	if b.err != nil {
		_ = f.Close()
		return nil, b.err
	}
	return f, nil
}

// builder collects the first error so the layout code reads top to bottom.
type builder struct {
	err    error
	f      *excelize.File
	bold   int
	amount int
}

func (b *builder) check(err error, what string) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("failed to %s: %w", what, err)
	}
}

func (b *builder) init() {
	b.check(b.f.SetSheetName(defaultSheet, sheets.TabSummary), "rename sheet")
	for _, name := range []string{sheets.TabProjection, sheets.TabInputs} {
		_, err := b.f.NewSheet(name)
		b.check(err, "create sheet "+name)
	}

	var err error
	b.bold, err = b.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	b.check(err, "create header style")
	format := amountFormat
	b.amount, err = b.f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	b.check(err, "create amount style")
}

func (b *builder) sheet(name string, rows [][]any, widths map[string]float64) {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		b.check(err, "address row")
		if b.err != nil {
			return
		}
		b.check(b.f.SetSheetRow(name, cell, &row), "write "+name)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		b.check(err, "address header")
		if b.err == nil {
			b.check(b.f.SetCellStyle(name, "A1", last, b.bold), "style header")
		}
	}
	for col, width := range widths {
		b.check(b.f.SetColWidth(name, col, col, width), "size columns")
	}
}

func (b *builder) formatAmounts(sheet, col string, from, to int) {
	if to < from {
		return
	}
	b.check(b.f.SetCellStyle(sheet, fmt.Sprintf("%s%d", col, from), fmt.Sprintf("%s%d", col, to), b.amount), "format amounts")
}

func (b *builder) chart(years int) {
	if years == 0 {
		return
	}
	last := years + 1
	b.check(b.f.AddChart(sheets.TabProjection, "E2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$C$1", sheets.TabProjection),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheets.TabProjection, last),
			Values:     fmt.Sprintf("'%s'!$C$2:$C$%d", sheets.TabProjection, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Projected Assets"}},
		Legend: excelize.ChartLegend{Position: "none"},
	}), "add projection chart")
}

var _ service.ReportWriter = (*Writer)(nil)
