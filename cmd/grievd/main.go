package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/grievd/internal/cli"
	"github.com/example/grievd/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "grievd",
		Short:   "grievd - grievance lifecycle and SLA accountability engine",
		Version: version.String(),
		Long: `grievd records civic grievances as append-only event logs, enforces the
lifecycle rules, escalates grievances whose SLA deadline has passed, and keeps
per-department accountability scores.`,
		SilenceUsage: true,
	}
	cli.BindGlobalFlags(rootCmd)

	// Service
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.SweepCmd())
	rootCmd.AddCommand(cli.ReconcileCmd())

	// Grievances
	rootCmd.AddCommand(cli.SubmitCmd())
	rootCmd.AddCommand(cli.CommandCmd())
	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.LogCmd())
	rootCmd.AddCommand(cli.RebuildCmd())

	// Departments
	rootCmd.AddCommand(cli.StatsCmd())

	// Tools
	rootCmd.AddCommand(cli.TokenCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
