package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/spf13/cobra"
)

// entryCmds returns the goals, expenses and loans commands.
func entryCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(model.EntryKinds))
	for _, kind := range model.EntryKinds {
		cmds = append(cmds, entryCmd(kind))
	}
	return cmds
}

func entryCmd(kind model.EntryKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     kind.Plural(),
		Aliases: []string{string(kind)},
		Short:   "Manage your " + kind.Plural(),
		Long: fmt.Sprintf(`List, add, edit and remove %s.

Entries are addressed by the key shown in "lifesheet %s list": the stored id,
or #N for an entry that has not been saved yet.`, kind.Plural(), kind.Plural()),
	}

	cmd.AddCommand(entryListCmd(kind))
	cmd.AddCommand(entryAddCmd(kind))
	cmd.AddCommand(entryEditCmd(kind))
	cmd.AddCommand(entryRemoveCmd(kind))
	return cmd
}

func printEntries(out io.Writer, wf *workflow.Workflow, kind model.EntryKind) error {
	entries := wf.Snapshot().Entries(kind)
	keys := make([]model.EntryKey, len(entries))
	for i := range entries {
		k, err := wf.Plan().KeyAt(kind, i)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	fmt.Fprintln(out, cli.RenderEntries(kind, entries, keys))
	return nil
}

func entryListCmd(kind model.EntryKind) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your " + kind.Plural(),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkflow(cmd, workflow.Options{}, func(_ context.Context, _ *app, wf *workflow.Workflow) error {
				return printEntries(cmd.OutOrStdout(), wf, kind)
			})
		},
	}
}

func entryAddCmd(kind model.EntryKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <description> <amount>",
		Short: "Add a " + string(kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, _ := model.ParseNumber(args[1])

			var e model.Entry
			switch kind {
			case model.KindGoal:
				e = model.NewGoal(args[0], amount)
			case model.KindExpense:
				e = model.NewExpense(args[0], amount)
			case model.KindLoan:
				var emi *float64
				if raw, _ := cmd.Flags().GetString("emi"); raw != "" {
					if v, ok := model.ParseNumber(raw); ok {
						emi = &v
					}
				}
				e = model.NewLoan(args[0], amount, emi)
			}

			return withWorkflow(cmd, workflow.Options{}, func(ctx context.Context, a *app, wf *workflow.Workflow) error {
				key, err := wf.Add(kind, e)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if err := autosave(ctx, a, wf, out, kind.Plural()+"["+key.String()+"]"); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s %q", kind, e.Description)))
				return printEntries(out, wf, kind)
			})
		},
	}
	if kind == model.KindLoan {
		cmd.Flags().String("emi", "", "monthly installment")
	}
	return cmd
}

func entryEditCmd(kind model.EntryKind) *cobra.Command {
	fields := "description, amount"
	if kind == model.KindLoan {
		fields += ", emi"
	}
	return &cobra.Command{
		Use:   "edit <key> <field> <value>",
		Short: "Change one field of a " + string(kind),
		Long:  fmt.Sprintf("Change one field of a %s. Fields: %s.", kind, fields),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := model.ParseEntryKey(args[0])
			if err != nil {
				return err
			}
			return withWorkflow(cmd, workflow.Options{}, func(ctx context.Context, a *app, wf *workflow.Workflow) error {
				if err := wf.Update(kind, key, args[1], args[2]); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if err := autosave(ctx, a, wf, out, kind.Plural()+"["+key.String()+"]."+args[1]); err != nil {
					return err
				}
				return printEntries(out, wf, kind)
			})
		},
	}
}

func entryRemoveCmd(kind model.EntryKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"delete"},
		Short:   "Delete a " + string(kind),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := model.ParseEntryKey(args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")

			return withWorkflow(cmd, workflow.Options{}, func(ctx context.Context, a *app, wf *workflow.Workflow) error {
				out := cmd.OutOrStdout()
				e, err := wf.Plan().Resolve(kind, key)
				if err != nil {
					return err
				}
				if !yes {
					p := cli.NewPrompter(cmd.InOrStdin(), out)
					ok, err := p.Confirm(ctx, fmt.Sprintf("Delete %s %q?", kind, e.Description))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, cli.FormatInfo("Nothing deleted."))
						return nil
					}
				}

				removed, err := wf.Delete(ctx, a.session, kind, key)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %s %q", kind, removed.Description)))
				return printEntries(out, wf, kind)
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "delete without asking")
	return cmd
}
