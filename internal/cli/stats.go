package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/grievd/internal/ports/primary"
)

var statsCmd = &cobra.Command{
	Use:   "stats [department-id]",
	Short: "Show department SLA accountability",
	Long:  "Show one department's aggregate, or the leaderboard of all departments ordered by SLA score",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := components()
		if err != nil {
			return err
		}
		ctx := NewContext()

		var stats []*primary.DepartmentStats
		if len(args) == 1 {
			s, err := app.Queries.GetDepartmentStats(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get department stats: %w", err)
			}
			stats = []*primary.DepartmentStats{s}
		} else {
			stats, err = app.Queries.ListDepartmentStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to list department stats: %w", err)
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(stats)
		}
		if len(stats) == 0 {
			fmt.Println("No departments found.")
			return nil
		}
		printStats(os.Stdout, stats)
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [department-id]",
	Short: "Recompute department aggregates from the event logs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := components()
		if err != nil {
			return err
		}
		ctx := NewContext()

		var results []*primary.ReconcileResult
		if len(args) == 1 {
			r, err := app.Reconciler.ReconcileDepartment(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to reconcile %s: %w", args[0], err)
			}
			results = []*primary.ReconcileResult{r}
		} else {
			results, err = app.Reconciler.ReconcileAll(ctx)
			if err != nil {
				return fmt.Errorf("reconciliation incomplete: %w", err)
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DEPARTMENT\tRESULT\tTOTAL\tON-TIME\tBREACHED\tESCALATED")
		fmt.Fprintln(w, "----------\t------\t-----\t-------\t--------\t---------")
		for _, r := range results {
			result := "ok"
			if r.Drifted {
				result = "corrected"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
				r.DepartmentID,
				result,
				r.After.TotalComplaints,
				r.After.ResolvedOnTime,
				r.After.BreachedCount,
				r.After.EscalatedCount,
			)
		}
		w.Flush()
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the stats as JSON")
}

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	return statsCmd
}

// ReconcileCmd returns the reconcile command
func ReconcileCmd() *cobra.Command {
	return reconcileCmd
}
