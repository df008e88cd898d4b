package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/config"
	"github.com/Veraticus/life-sheet/internal/ofx"
	"github.com/Veraticus/life-sheet/internal/plaid"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/sheets"
	"github.com/Veraticus/life-sheet/internal/tui"
	"github.com/Veraticus/life-sheet/internal/workbook"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// plaidAPI is what the CLI needs from Plaid.
type plaidAPI interface {
	plaid.BalanceFetcher
	plaid.Linker
}

// Constructors for external services; tests replace them with mocks.
var (
	newPlaidClient = func(cfg plaid.Config) (plaidAPI, error) {
		return plaid.NewClient(cfg, slog.Default())
	}
	newSheetsWriter = func(ctx context.Context, cfg sheets.Config) (service.ReportWriter, error) {
		return sheets.NewWriter(ctx, cfg, slog.Default())
	}
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your sheet with its summary and projection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sheets",
		Short: "Write Summary, Projection and Inputs tabs to Google Sheets",
		Long: `Write Summary, Projection and Inputs tabs to Google Sheets.

Run "lifesheet auth sheets" first, or configure a service account with
sheets.service_account_path. The spreadsheet is sheets.spreadsheet_id when set,
otherwise a new one named sheets.spreadsheet_name is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("google sheets is not configured: %w", err)
			}
			return withWorkflow(cmd, workflow.Options{}, func(ctx context.Context, _ *app, wf *workflow.Workflow) error {
				writer, err := newSheetsWriter(ctx, *cfg)
				if err != nil {
					return err
				}
				return export(ctx, cmd, wf, writer, "Google Sheets")
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "xlsx <file>",
		Short: "Write an Excel workbook (use - for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkflow(cmd, workflow.Options{}, func(ctx context.Context, _ *app, wf *workflow.Workflow) error {
				if args[0] == "-" {
					return wf.Export(ctx, workbook.NewWriter(cmd.OutOrStdout(), slog.Default()))
				}
				return export(ctx, cmd, wf, workbook.NewFileWriter(args[0], slog.Default()), args[0])
			})
		},
	})

	return cmd
}

func export(ctx context.Context, cmd *cobra.Command, wf *workflow.Workflow, w service.ReportWriter, dest string) error {
	if err := wf.Export(ctx, w); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported to "+dest))
	return nil
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import account balances",
		Long: `Import account balances into your sheet.

Asset balances (checking, savings, investments) replace your total asset value.
Liabilities (cards, loans) update the loan with the same name or are added as
new loans. The sheet is saved afterwards unless --dry-run is given.`,
	}
	cmd.PersistentFlags().Bool("dry-run", false, "show the result without saving")

	cmd.AddCommand(&cobra.Command{
		Use:   "ofx <file>...",
		Short: "Import balances from OFX/QFX files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ofx.FileSource{Parser: ofx.NewParser(slog.Default()), Paths: args}
			return runImport(cmd, src)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "plaid",
		Short: "Import balances from accounts linked with Plaid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadPlaid(viper.GetViper())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf(`%w. Run "lifesheet auth plaid" first`, err)
			}
			client, err := newPlaidClient(*cfg)
			if err != nil {
				return err
			}
			return runImport(cmd, client)
		},
	})

	return cmd
}

func runImport(cmd *cobra.Command, src service.BalanceSource) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	progress := cli.NewSaveProgress(cmd.ErrOrStderr())

	return withWorkflow(cmd, workflow.Options{OnProgress: progress.Update}, func(ctx context.Context, a *app, wf *workflow.Workflow) error {
		out := cmd.OutOrStdout()
		added, err := wf.ImportHoldings(ctx, src)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported balances; %d new loans", added)))
		printSummary(out, wf)

		if dryRun {
			fmt.Fprintln(out, cli.FormatInfo("Dry run: nothing saved."))
			return nil
		}
		return saveAll(ctx, cmd, a, wf)
	})
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit your sheet in an interactive form",
		Long: `Edit your profile, goals, expenses and loans in an interactive form.

The summary updates as you move between fields, and each change is saved when
its field loses focus. Press ctrl+s to save everything and esc to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			wf := workflow.New(a.store, workflow.Options{Logger: a.logger})
			opts := []tui.Option{
				tui.WithWorkflow(wf),
				tui.WithSession(a.session),
			}
			if inline, _ := cmd.Flags().GetBool("inline"); inline {
				opts = append(opts, tui.WithInlineRendering())
			}
			return tui.Run(ctx, opts...)
		},
	}
	cmd.Flags().Bool("inline", false, "draw in the normal screen instead of the alternate screen")
	return cmd
}
