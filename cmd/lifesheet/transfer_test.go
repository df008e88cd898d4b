package main

import (
	"context"
	"testing"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/plaid"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usePlaidMock(t *testing.T, m *plaid.MockClient) {
	t.Helper()
	prev := newPlaidClient
	newPlaidClient = func(plaid.Config) (plaidAPI, error) { return m, nil }
	t.Cleanup(func() { newPlaidClient = prev })

	t.Setenv("LIFESHEET_PLAID_CLIENT_ID", "client")
	t.Setenv("LIFESHEET_PLAID_SECRET", "secret")
	t.Setenv("LIFESHEET_PLAID_ACCESS_TOKEN", "access-sandbox-token")
}

func TestImportPlaid(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("profile", "set", "age", "30", "income", "1200000")

	m := plaid.NewMockClient()
	m.FetchHoldingsFn = func(context.Context) (model.Holdings, error) {
		return model.Holdings{Accounts: []model.AccountBalance{
			{Name: "Savings", Mask: "2222", Class: model.ClassAsset, Balance: 800_000},
			{Name: "Visa", Mask: "1234", Class: model.ClassLiability, Balance: -40_000},
		}}, nil
	}
	usePlaidMock(t, m)

	out := env.mustRun("import", "plaid")
	assert.Contains(t, out, "1 new loans")
	assert.Equal(t, 1, m.FetchHoldingsCalls)

	loans := env.stored(model.KindLoan)
	require.Len(t, loans, 1)
	assert.Equal(t, "Visa ****1234", loans[0].Description)
	assert.InDelta(t, 40_000, loans[0].Amount, 0.001)

	// A second import updates the same loan instead of adding another.
	out = env.mustRun("import", "plaid")
	assert.Contains(t, out, "0 new loans")
	assert.Len(t, env.stored(model.KindLoan), 1)
}

func TestImportPlaidNeedsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	usePlaidMock(t, plaid.NewMockClient())
	t.Setenv("LIFESHEET_PLAID_ACCESS_TOKEN", "")
	t.Setenv("PLAID_ACCESS_TOKEN", "")

	_, err := env.run("", "import", "plaid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth plaid")
}

func TestExportSheets(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("profile", "set", "age", "30", "income", "1200000")
	env.mustRun("goals", "add", "House", "5000000")

	m := sheets.NewMockWriter()
	prev := newSheetsWriter
	newSheetsWriter = func(context.Context, sheets.Config) (service.ReportWriter, error) { return m, nil }
	t.Cleanup(func() { newSheetsWriter = prev })
	t.Setenv("LIFESHEET_SHEETS_CLIENT_ID", "client")
	t.Setenv("LIFESHEET_SHEETS_CLIENT_SECRET", "secret")
	t.Setenv("LIFESHEET_SHEETS_REFRESH_TOKEN", "refresh")

	out := env.mustRun("export", "sheets")
	assert.Contains(t, out, "Exported to Google Sheets")

	require.Len(t, m.GetWriteCalls(), 1)
	report := m.GetWriteCalls()[0].Report
	assert.Equal(t, 55, report.Summary.RemainingLife)
	assert.Len(t, report.Projection, 56)
	require.Len(t, report.Snapshot.Goals, 1)
	assert.Equal(t, "House", report.Snapshot.Goals[0].Description)
}

func TestExportSheetsUnconfigured(t *testing.T) {
	env := newTestEnv(t)
	for _, k := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(k, "")
	}

	_, err := env.run("", "export", "sheets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
