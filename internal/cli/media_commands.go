package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shorts-studio/internal/media"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Resolve and download pipeline media",
	}
	mediaCmd.AddCommand(newMediaResolveCommand(ctx))
	mediaCmd.AddCommand(newMediaFetchCommand(ctx))
	return mediaCmd
}

func newMediaResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Print the fetchable URL for media paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := ctx.resolver()
			if ctx.jsonOutput() {
				out := make(map[string]string, len(args))
				for _, p := range args {
					out[p] = resolver.Resolve(p)
				}
				return writeJSON(cmd, out)
			}
			for _, p := range args {
				fmt.Fprintln(cmd.OutOrStdout(), resolver.Resolve(p))
			}
			return nil
		},
	}
}

func newMediaFetchCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "fetch <path>",
		Short: "Download one media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dest := strings.TrimSpace(outPath)
			if dest == "" {
				dest = cfg.DownloadDir
				if err := os.MkdirAll(dest, 0o755); err != nil {
					return fmt.Errorf("create download directory: %w", err)
				}
			}
			res, err := media.NewFetcher(ctx.resolver(), nil).Fetch(cmd.Context(), args[0], dest)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Bytes)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file or directory (default: download_dir from config)")
	return cmd
}
