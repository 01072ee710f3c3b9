package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ports/primary"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "File a new grievance",
	Long: `File a new grievance as a citizen. The category decides the department
and the SLA window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		description, _ := cmd.Flags().GetString("description")
		fields, _ := cmd.Flags().GetStringArray("field")

		payload, err := parseFields(fields)
		if err != nil {
			return err
		}
		payload[grievance.KeyCategory] = category
		if description != "" {
			payload["description"] = description
		}

		return runCommand(cmd, primary.Command{
			EventType: grievance.EventSubmitted,
			Payload:   payload,
		})
	},
}

var commandCmd = &cobra.Command{
	Use:   "command [grievance-id] [EVENT_TYPE]",
	Short: "Record an event against a grievance",
	Long: `Record an event against a grievance, e.g.

  grievd command GRV-2026-1A2B3C ASSIGNED --actor OFF-1 --role officer -f officerId=OFF-9
  grievd command GRV-2026-1A2B3C CLOSED --actor OFF-1 --role officer --expected-version 6`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, _ := cmd.Flags().GetStringArray("field")
		expectedStatus, _ := cmd.Flags().GetString("expected-status")

		payload, err := parseFields(fields)
		if err != nil {
			return err
		}
		c := primary.Command{
			GrievanceID:    args[0],
			EventType:      grievance.EventType(strings.ToUpper(args[1])),
			Payload:        payload,
			ExpectedStatus: grievance.Status(expectedStatus),
		}
		if cmd.Flags().Changed("expected-version") {
			v, _ := cmd.Flags().GetInt64("expected-version")
			c.ExpectedVersion = primary.Version(v)
		}
		return runCommand(cmd, c)
	},
}

// runCommand submits c as the CLI actor and prints the outcome.
func runCommand(cmd *cobra.Command, c primary.Command) error {
	actor, err := currentActor()
	if err != nil {
		return err
	}
	c.Actor = actor

	app, err := components()
	if err != nil {
		return err
	}
	res, err := app.Gateway.Submit(NewContext(), c)
	if err != nil {
		return fmt.Errorf("%s rejected (%s): %w", c.EventType, grievance.ErrorKind(err), err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(res)
	}
	fmt.Printf("✓ %s recorded on %s (version %d)\n", res.Event.Type, res.View.ID, res.View.Version)
	fmt.Printf("  Status: %s  SLA: %s\n", res.View.Status, colorSLA(res.View.SLAStatus))
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show [grievance-id]",
	Short: "Show a grievance's current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := components()
		if err != nil {
			return err
		}
		view, err := app.Queries.GetGrievanceView(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get grievance: %w", err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(view)
		}
		printView(os.Stdout, view)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log [grievance-id]",
	Short: "Show a grievance's event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := components()
		if err != nil {
			return err
		}
		events, err := app.Queries.GetEventLog(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read event log: %w", err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(events)
		}
		printEvents(os.Stdout, events)
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [grievance-id]",
	Short: "Rebuild a grievance's cached view from its event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := components()
		if err != nil {
			return err
		}
		view, err := app.Queries.RebuildView(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to rebuild view: %w", err)
		}
		fmt.Printf("✓ Rebuilt %s at version %d\n", view.ID, view.Version)
		return nil
	},
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	// submit flags
	submitCmd.Flags().StringP("category", "c", "", "Grievance category (required)")
	submitCmd.Flags().StringP("description", "d", "", "Free-text description")
	submitCmd.Flags().StringArrayP("field", "f", nil, "Extra payload field key=value (repeatable)")
	submitCmd.Flags().Bool("json", false, "Print the result as JSON")
	_ = submitCmd.MarkFlagRequired("category")

	// command flags
	commandCmd.Flags().StringArrayP("field", "f", nil, "Payload field key=value (repeatable)")
	commandCmd.Flags().Int64("expected-version", 0, "Reject unless the grievance is at this version")
	commandCmd.Flags().String("expected-status", "", "Reject unless the grievance is in this status")
	commandCmd.Flags().Bool("json", false, "Print the result as JSON")

	showCmd.Flags().Bool("json", false, "Print the view as JSON")
	logCmd.Flags().Bool("json", false, "Print the log as JSON")
}

// SubmitCmd returns the submit command
func SubmitCmd() *cobra.Command {
	return submitCmd
}

// CommandCmd returns the command command
func CommandCmd() *cobra.Command {
	return commandCmd
}

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	return showCmd
}

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	return logCmd
}

// RebuildCmd returns the rebuild command
func RebuildCmd() *cobra.Command {
	return rebuildCmd
}
