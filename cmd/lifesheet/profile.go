package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/spf13/cobra"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your profile",
	}
	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileSetCmd())
	return cmd
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkflow(cmd, workflow.Options{}, func(_ context.Context, _ *app, wf *workflow.Workflow) error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderProfile(wf.Snapshot().Profile))
				return nil
			})
		},
	}
}

func fieldNames() string {
	names := make([]string, len(model.ProfileFields))
	for i, f := range model.ProfileFields {
		names[i] = string(f.Name)
	}
	return strings.Join(names, "\n  ")
}

func profileSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value> [<field> <value>...]",
		Short: "Change profile fields",
		Long: `Change one or more profile fields and save them.

Fields:
  ` + fieldNames() + `

An empty value clears age, income and the optional fields. Text that is not a
number is stored as 0. The store keeps a profile only once it has an age and
a current annual gross income, so set those two first.`,
		Example: `  lifesheet profile set age 30 current_annual_gross_income 1200000
  lifesheet profile set lifespan_years 90`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected <field> <value> pairs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkflow(cmd, workflow.Options{}, func(ctx context.Context, a *app, wf *workflow.Workflow) error {
				out := cmd.OutOrStdout()
				var changed []string
				for i := 0; i < len(args); i += 2 {
					if _, err := wf.SetField(args[i], args[i+1]); err != nil {
						return err
					}
					changed = append(changed, args[i])
				}
				if err := autosave(ctx, a, wf, out, strings.Join(changed, ",")); err != nil {
					return err
				}

				fmt.Fprintln(out, cli.RenderProfile(wf.Snapshot().Profile))
				if summary, ok := wf.Summary(); ok {
					fmt.Fprintln(out, cli.RenderSummary(summary, wf.Snapshot().Profile.Warnings()))
				}
				return nil
			})
		},
	}
}
