package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the CLI actor",
	Long: `Issue an HS256 bearer token for --actor and --role, signed with the
configured secret. Meant for local testing of the HTTP API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		actor, err := currentActor()
		if err != nil {
			return err
		}
		app, err := components()
		if err != nil {
			return err
		}
		if app.Auth == nil {
			return fmt.Errorf("no JWT secret configured (auth.jwt_secret or GRIEVD_JWT_SECRET)")
		}
		tok, err := app.Auth.Issue(actor, ttl)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	return tokenCmd
}
