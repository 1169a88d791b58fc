package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set by cmd/searchctl from build flags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: groupUtility,
		Short:   "Print the searchctl version",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "searchctl %s (commit %s, built %s) %s\n", Version, Commit, Date, runtime.Version())
			return nil
		},
	}
}
