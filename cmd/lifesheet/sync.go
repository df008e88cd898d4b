package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/spf13/cobra"
)

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write your whole sheet to the store",
		Long: `Write the profile and every goal, expense and loan to the store.

Entries without an id are created and the rest are updated. Loans with neither
a name nor an amount are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			progress := cli.NewSaveProgress(cmd.ErrOrStderr())
			opts := workflow.Options{OnProgress: progress.Update}
			return withWorkflow(cmd, opts, func(ctx context.Context, a *app, wf *workflow.Workflow) error {
				return saveAll(ctx, cmd, a, wf)
			})
		},
	}
}

// saveAll runs an explicit save that stops on Ctrl+C.
func saveAll(ctx context.Context, cmd *cobra.Command, a *app, wf *workflow.Workflow) error {
	out := cmd.OutOrStdout()
	handler := cli.NewInterruptHandler(out, func() bool { return wf.Unsaved() > 0 })
	ctx = handler.HandleInterrupts(ctx)

	result, err := wf.Save(ctx, a.session)
	if handler.WasInterrupted() {
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(wf.Status().Message))
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d created, %d updated, %d skipped", result.Created, result.Updated, result.Skipped)))
	return nil
}

func pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Reload your sheet from the store and show it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkflow(cmd, workflow.Options{}, func(_ context.Context, _ *app, wf *workflow.Workflow) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.RenderProfile(wf.Snapshot().Profile))
				for _, kind := range model.EntryKinds {
					fmt.Fprintln(out)
					if err := printEntries(out, wf, kind); err != nil {
						return err
					}
				}
				fmt.Fprintln(out)
				printSummary(out, wf)
				return nil
			})
		},
	}
}

func scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Save and compare summaries",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save <name>",
		Short: "Save the current summary under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkflow(cmd, workflow.Options{}, func(ctx context.Context, a *app, wf *workflow.Workflow) error {
				sc, err := wf.SaveScenario(ctx, a.session, a.scenarios, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved scenario %q", sc.Name)))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved scenarios",
		Args:    cobra.NoArgs,
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

			scenarios, err := a.scenarios.ListScenarios(ctx, a.session)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderScenarios(scenarios))
			return nil
		},
	})
	return cmd
}
