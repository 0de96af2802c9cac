package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Run executes the command line and returns the first error.
func Run(args []string) error {
	return RunContext(context.Background(), args, os.Stdout, os.Stderr)
}

// RunContext is Run with explicit streams and a context that bounds every
// network call.
func RunContext(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var apiBaseFlag string
	var jsonFlag bool

	ctx := newCommandContext(&configFlag, &apiBaseFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:   "shorts-studio",
		Short: "Terminal studio for the short-video generation pipeline",
		Long: `shorts-studio creates pipeline jobs, follows them while the remote
pipeline works, and submits human review decisions.

Quick start:
  shorts-studio config init
  shorts-studio doctor
  shorts-studio watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiBaseFlag, "api-base", "", "Job store base URL (overrides config and environment)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))
	rootCmd.AddCommand(newLibraryCommand(ctx))
	rootCmd.AddCommand(newMediaCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))

	return rootCmd
}
