package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show net worth, surplus or deficit and remaining life",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkflow(cmd, workflow.Options{}, func(_ context.Context, _ *app, wf *workflow.Workflow) error {
				printSummary(cmd.OutOrStdout(), wf)
				return nil
			})
		},
	}
}

func printSummary(out io.Writer, wf *workflow.Workflow) {
	summary, ok := wf.Summary()
	if !ok {
		fmt.Fprintln(out, cli.RenderIncomplete())
		return
	}
	fmt.Fprintln(out, cli.RenderSummary(summary, wf.Snapshot().Profile.Warnings()))
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project your assets year by year",
		Long: `Project total assets for every year from now until your expected lifespan.

Income is added each year while you are still working, and annual expenses
plus loan EMIs are drawn down every year.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			years, _ := cmd.Flags().GetInt("years")
			if years < 0 {
				return fmt.Errorf("%w: --years cannot be negative", common.ErrInvalidInput)
			}
			switch format {
			case "table", "json", "csv":
			default:
				return fmt.Errorf("%w: unknown format %q (table, json, csv)", common.ErrInvalidInput, format)
			}

			return withWorkflow(cmd, workflow.Options{}, func(_ context.Context, _ *app, wf *workflow.Workflow) error {
				points := slices.Collect(take(wf.Projection(), years))
				return writeProjection(cmd.OutOrStdout(), format, points)
			})
		},
	}
	cmd.Flags().StringP("format", "f", "table", "output format (table, json, csv)")
	cmd.Flags().IntP("years", "n", 0, "limit to the first N years (0 for all)")
	return cmd
}

// take stops seq after n values; n <= 0 yields everything.
func take[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		i := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			i++
			if i == n {
				return
			}
		}
	}
}

func writeProjection(out io.Writer, format string, points []model.YearPoint) error {
	switch format {
	case "json":
		if points == nil {
			points = []model.YearPoint{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(points)

	case "csv":
		w := csv.NewWriter(out)
		if err := w.Write([]string{"year", "age", "asset"}); err != nil {
			return err
		}
		for _, p := range points {
			row := []string{strconv.Itoa(p.Year), strconv.Itoa(p.Age), strconv.FormatInt(p.Asset, 10)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}

	fmt.Fprintln(out, cli.RenderProjection(points))
	return nil
}
