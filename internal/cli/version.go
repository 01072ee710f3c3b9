package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/grievd/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grievd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return versionCmd
}
