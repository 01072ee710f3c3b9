// Package cli provides the CLI commands for grievd.
package cli

import (
	gocontext "context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ctxutil"
	"github.com/example/grievd/internal/wire"
)

// Global flags, bound once on the root command.
var (
	globalConfigPath string
	globalDBPath     string
	globalActorID    string
	globalRole       string
)

// BindGlobalFlags registers the persistent flags and configures the wiring
// before any subcommand runs.
func BindGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&globalConfigPath, "config", "", "Path to config YAML (default ~/.grievd/config.yaml if present)")
	root.PersistentFlags().StringVar(&globalDBPath, "db", "", "Path to the SQLite database (default from config, then ~/.grievd/grievd.db)")
	root.PersistentFlags().StringVar(&globalActorID, "actor", "", "Actor id recorded on commands")
	root.PersistentFlags().StringVar(&globalRole, "role", "", "Actor role: citizen, officer or system")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		wire.Configure(wire.Options{ConfigPath: globalConfigPath, DBPath: globalDBPath})
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return wire.Shutdown()
	}
}

// NewContext creates a context.Background() with the CLI actor embedded.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if globalActorID != "" {
		return ctxutil.WithActor(ctx, globalActorID, globalRole)
	}
	return ctx
}

// currentActor returns the actor named by --actor and --role.
func currentActor() (grievance.Actor, error) {
	role := grievance.Role(globalRole)
	if globalActorID == "" && role == grievance.RoleSystem {
		return grievance.SystemActor(), nil
	}
	if globalActorID == "" {
		return grievance.Actor{}, fmt.Errorf("--actor is required")
	}
	if !role.Valid() {
		return grievance.Actor{}, fmt.Errorf("--role must be citizen, officer or system (got %q)", globalRole)
	}
	return grievance.Actor{ID: globalActorID, Role: role}, nil
}

// components returns the wired application.
func components() (*wire.Components, error) {
	return wire.Get()
}
