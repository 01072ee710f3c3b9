package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one escalation monitor sweep",
	Long:  "Escalate every open grievance whose SLA deadline has passed, then report what happened",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := components()
		if err != nil {
			return err
		}
		r := app.Monitor.Sweep(NewContext())

		fmt.Printf("Checked: %d\n", r.Checked)
		fmt.Printf("Escalated: %d\n", r.Escalated)
		fmt.Printf("Skipped: %d\n", r.Skipped)
		fmt.Printf("Conflicts: %d\n", r.Conflicts)
		fmt.Printf("Failed: %d\n", r.Failed)
		fmt.Printf("Duration: %s\n", r.Duration)
		if r.Failed > 0 {
			return fmt.Errorf("%d escalations failed", r.Failed)
		}
		return nil
	},
}

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	return sweepCmd
}
