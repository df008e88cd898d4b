package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements service.ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  common.ComponentLogger(logger, "sheets"),
	}, nil
}

// Write replaces the Summary, Projection and Inputs tabs with the report.
func (w *Writer) Write(ctx context.Context, report model.Report) error {
	data := BuildTabData(report)
	w.logger.Info("starting sheets export",
		"projection_years", len(data.Projection),
		"inputs", len(data.Inputs))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	tabs := map[string][][]any{
		TabSummary:    SummaryValues(data),
		TabProjection: ProjectionValues(data),
		TabInputs:     InputValues(data),
	}
	for _, tab := range []string{TabSummary, TabProjection, TabInputs} {
		values := tabs[tab]
		err := common.WithRetry(ctx, func() error {
			if clearErr := w.clearTab(ctx, spreadsheetID, tab); clearErr != nil {
				return clearErr
			}
			return w.writeData(ctx, spreadsheetID, tab, values)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s tab: %w", tab, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID)
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed", "spreadsheet_id", spreadsheetID)
	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet returns the configured spreadsheet, making sure every
// tab exists, or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		if err := w.ensureTabs(ctx, existing); err != nil {
			return "", err
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: TabSummary, SheetId: 0}},
			{Properties: &sheets.SheetProperties{Title: TabProjection, SheetId: 1}},
			{Properties: &sheets.SheetProperties{Title: TabInputs, SheetId: 2}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) ensureTabs(ctx context.Context, existing *sheets.Spreadsheet) error {
	have := make(map[string]bool)
	for _, sh := range existing.Sheets {
		if sh.Properties != nil {
			have[sh.Properties.Title] = true
		}
	}

	var requests []*sheets.Request
	for _, tab := range []string{TabSummary, TabProjection, TabInputs} {
		if !have[tab] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
			})
		}
	}
	if len(requests) == 0 {
		return nil
	}

	_, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add tabs: %w", err)
	}
	return nil
}

func (w *Writer) clearTab(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes values to a tab in batches.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		rangeStr := fmt.Sprintf("%s!A%d", tab, i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds headers and applies the currency pattern. It only
// touches spreadsheets created by this writer, whose sheet ids are fixed.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string) error {
	if w.config.SpreadsheetID != "" {
		return nil
	}

	currency := func(sheetID, col int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 1, StartColumnIndex: col, EndColumnIndex: col + 1},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: w.config.CurrencyPattern},
				}},
				Fields: "userEnteredFormat.numberFormat",
			},
		}
	}
	bold := func(sheetID int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				}},
				Fields: "userEnteredFormat.textFormat",
			},
		}
	}

	requests := []*sheets.Request{
		bold(0), bold(1), bold(2),
		currency(0, 1),
		currency(1, 2),
		currency(2, 2), currency(2, 3),
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        1,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}

// SummaryValues lays out the Summary tab.
func SummaryValues(data TabData) [][]any {
	values := [][]any{
		{"Life Sheet", data.GeneratedAt.Format("Jan 2, 2006")},
	}
	for _, row := range data.Summary {
		values = append(values, []any{row.Label, row.Amount.Round(2).InexactFloat64()})
	}
	values = append(values,
		[]any{"Remaining Life (years)", data.RemainingLife},
		[]any{},
		[]any{"Profile"},
	)
	for _, kv := range data.Profile {
		values = append(values, []any{kv[0], kv[1]})
	}
	return values
}

// ProjectionValues lays out the Projection tab.
func ProjectionValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.Projection)+1)
	values = append(values, []any{"Year", "Age", "Projected Assets"})
	for _, row := range data.Projection {
		values = append(values, []any{row.Year, row.Age, row.Asset.IntPart()})
	}
	return values
}

// InputValues lays out the Inputs tab.
func InputValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.Inputs)+1)
	values = append(values, []any{"Kind", "Description", "Amount", "EMI"})
	for _, row := range data.Inputs {
		emi := any("")
		if row.HasEMI {
			emi = row.EMI.Round(2).InexactFloat64()
		}
		values = append(values, []any{row.Kind, row.Description, row.Amount.Round(2).InexactFloat64(), emi})
	}
	return values
}

var _ service.ReportWriter = (*Writer)(nil)
