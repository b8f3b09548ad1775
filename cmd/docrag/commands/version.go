package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docuquest/docrag-go/internal/version"
)

// NewVersionCmd constructs the `docrag version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docrag version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docrag %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.BuildDate)
		},
	}
}
