package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shorts-studio/internal/media"
	"shorts-studio/internal/model"
)

const exportWorkers = 3

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Browse and download published videos",
	}
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryExportCommand(ctx))
	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			items, err := client.ListLibrary(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, items)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Library is empty.")
				return nil
			}
			resolver := ctx.resolver()
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					defaultIfEmpty(item.TopicValue(), "(untitled)"),
					defaultIfEmpty(item.JobIDValue(), "-"),
					defaultIfEmpty(resolver.Resolve(libraryVideoPath(item)), "-"),
					libraryCreated(item),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Topic", "Job", "Video", "Created"}, rows, nil))
			return nil
		},
	}
}

// libraryVideoPath is the served media path of an item. FinalVideo is a path
// on the server's disk and is never fetchable, so items the server could not
// map under /media have no video.
func libraryVideoPath(item model.LibraryItem) string {
	return item.FinalVideoURLValue()
}

func libraryCreated(item model.LibraryItem) string {
	if item.CreatedAt == nil {
		return "-"
	}
	return relativeTime(item.CreatedAt.Time)
}

func newLibraryExportCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var jobID string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download published videos into a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			items, err := client.ListLibrary(cmd.Context())
			if err != nil {
				return err
			}

			target := strings.TrimSpace(dir)
			if target == "" {
				target = cfg.DownloadDir
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}
			lock, err := media.AcquireDirLock(target)
			if err != nil {
				return err
			}
			defer func() {
				_ = lock.Release()
			}()

			var selected []model.LibraryItem
			for _, item := range items {
				if jobID != "" && item.JobIDValue() != jobID {
					continue
				}
				if libraryVideoPath(item) == "" {
					continue
				}
				selected = append(selected, item)
			}
			if len(selected) == 0 {
				if jobID != "" {
					return fmt.Errorf("no published video for job %s", jobID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to export.")
				return nil
			}

			fetcher := media.NewFetcher(ctx.resolver(), nil)
			results := make([]media.FetchResult, len(selected))
			var mu sync.Mutex
			var total int64

			g, gctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(exportWorkers)
			for i, item := range selected {
				g.Go(func() error {
					res, err := fetcher.Fetch(gctx, libraryVideoPath(item), target)
					if err != nil {
						return err
					}
					results[i] = res
					mu.Lock()
					total += res.Bytes
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, res := range results {
				rows = append(rows, []string{res.Path, humanize.Bytes(uint64(res.Bytes))})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"File", "Size"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "Exported %d video(s), %s total\n", len(results), humanize.Bytes(uint64(total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Destination directory (default: download_dir from config)")
	cmd.Flags().StringVar(&jobID, "job", "", "Export only the video of this job")
	return cmd
}
