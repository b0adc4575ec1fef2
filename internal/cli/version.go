package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/modu-ai/rulesync/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Runs without a workspace.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s/%s\n",
				cmdName, version.GetFullVersion(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
