package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"shorts-studio/internal/version"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the client version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{
					"version": version.String(),
					"go":      runtime.Version(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shorts-studio %s (%s)\n", version.String(), runtime.Version())
			return nil
		},
	}
}
