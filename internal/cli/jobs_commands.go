package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shorts-studio/internal/media"
	"shorts-studio/internal/model"
	"shorts-studio/internal/studio"
	"shorts-studio/internal/studioapi"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Create, inspect, and review pipeline jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsCreateCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsReviewCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs in the order the job store returns them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			jobs, err := client.ListJobs(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, jobs)
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs yet. Create one with `shorts-studio jobs create <topic>`.")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Topic", "Status", "Created", "Updated"},
				jobRows(jobs),
				nil,
			))
			return nil
		},
	}
}

func jobRows(jobs []model.JobSummary) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.JobID,
			truncateRunes(j.Topic, 48),
			statusTitle(j.Status),
			relativeTime(j.CreatedAt.Time),
			relativeTime(j.UpdatedAt.Time),
		})
	}
	return rows
}

func newJobsCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <topic>",
		Short: "Start a new pipeline run for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return studio.ErrEmptyTopic
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			job, err := client.CreateJob(cmd.Context(), topic)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, job)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created job %s (%s): %s\n", job.JobID, statusTitle(job.Status), job.Topic)
			return nil
		},
	}
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show a job with its pipeline state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			jobID := strings.TrimSpace(args[0])
			detail, err := client.GetJob(cmd.Context(), jobID)
			if err != nil {
				if studioapi.IsNotFound(err) {
					return fmt.Errorf("job %s not found", jobID)
				}
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, detail)
			}
			printJobDetail(cmd.OutOrStdout(), detail, ctx.resolver())
			return nil
		},
	}
}

func printJobDetail(out io.Writer, d model.JobDetail, resolver media.Resolver) {
	for _, line := range jobDetailLines(d, resolver, 0) {
		fmt.Fprintln(out, line)
	}
}

// jobDetailLines renders a detail as plain lines. scriptLines limits the
// script excerpt; zero prints all of it.
func jobDetailLines(d model.JobDetail, resolver media.Resolver, scriptLines int) []string {
	state := d.Pipeline()
	lines := []string{
		kv("job", d.JobID),
		kv("topic", d.Topic),
		kv("status", statusTitle(d.Status)),
		kv("thread", defaultIfEmpty(d.ThreadID, "-")),
		kv("created", relativeTime(d.CreatedAt.Time)),
		kv("updated", relativeTime(d.UpdatedAt.Time)),
	}
	if msg := d.ErrorMessage(); msg != "" {
		lines = append(lines, kv("error", msg))
	}
	if state.NextAction != "" {
		lines = append(lines, kv("next action", state.NextAction))
	}
	if stages := state.AttemptStages(); len(stages) > 0 {
		parts := make([]string, 0, len(stages))
		for _, stage := range stages {
			parts = append(parts, stage+"="+strconv.Itoa(state.Attempts[stage]))
		}
		lines = append(lines, kv("attempts", strings.Join(parts, ", ")))
	}
	for _, e := range state.Errors {
		lines = append(lines, kv("stage error", e))
	}

	if d.Status == model.StatusWaitingReview {
		review := d.Review()
		lines = append(lines, "", "Review")
		if review.Message != "" {
			lines = append(lines, review.Message)
		}
		options := make([]string, 0, len(review.AllowedDecisions()))
		for _, opt := range review.AllowedDecisions() {
			options = append(options, string(opt))
		}
		lines = append(lines, kv("options", strings.Join(options, ", ")))
	}

	if state.Script != "" {
		lines = append(lines, "", "Script")
		if scriptLines > 0 {
			lines = append(lines, firstLines(state.Script, scriptLines)...)
		} else {
			lines = append(lines, strings.Split(strings.TrimSpace(state.Script), "\n")...)
		}
	}

	assets := assetLines(state, resolver)
	if len(assets) > 0 {
		lines = append(lines, "", "Media")
		lines = append(lines, assets...)
	}
	return lines
}

func assetLines(state model.PipelineState, resolver media.Resolver) []string {
	var lines []string
	for i, u := range resolver.ResolveAll(state.ClipURLs) {
		lines = append(lines, kv(fmt.Sprintf("clip %d", i+1), u))
	}
	for i, u := range resolver.ResolveAll(state.ImageURLs) {
		lines = append(lines, kv(fmt.Sprintf("image %d", i+1), u))
	}
	if u := resolver.Resolve(state.AudioNarrationURL); u != "" {
		lines = append(lines, kv("narration", u))
	}
	if u := resolver.Resolve(state.BackgroundMusic); u != "" {
		lines = append(lines, kv("music", u))
	}
	if u := resolver.Resolve(state.FinalVideoURL); u != "" {
		lines = append(lines, kv("final video", u))
	}
	if u := resolver.Resolve(state.MetadataURL); u != "" {
		lines = append(lines, kv("metadata", u))
	}
	return lines
}

func newJobsReviewCommand(ctx *commandContext) *cobra.Command {
	var decisionFlag string
	var notes string

	cmd := &cobra.Command{
		Use:   "review <job-id>",
		Short: "Submit a review decision for a job waiting for review",
		Long: `Submit a human review decision. Decisions:
  approved               publish the assembled video
  needs_script_revision  regenerate the script
  find_more_assets       search for more clips and images
  reassemble             rebuild the final video`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := model.ParseReviewDecision(decisionFlag)
			if err != nil {
				return err
			}
			jobID := strings.TrimSpace(args[0])
			sync, err := ctx.synchronizer(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Load the job first so a review for a job that is not paused is
			// rejected without reaching the server.
			sync.SelectJob(jobID)
			if err := sync.Refresh(cmd.Context()); err != nil {
				return err
			}
			if st := sync.Snapshot(); st.SelectedJobID != jobID {
				return fmt.Errorf("job %s not found", jobID)
			}

			job, err := studio.NewReviewController(sync).Submit(cmd.Context(), jobID, decision, notes)
			if err != nil {
				if errors.Is(err, studio.ErrNotAwaitingReview) {
					return fmt.Errorf("%w (only jobs in %q accept decisions)", err, model.StatusWaitingReview)
				}
				return err
			}
			if d, ok := sync.Snapshot().Detail(); ok && d.JobID == jobID {
				job = d.Summary()
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, job)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s for %s; job is now %s\n", decision.Label(), job.JobID, statusTitle(job.Status))
			return nil
		},
	}
	cmd.Flags().StringVarP(&decisionFlag, "decision", "d", "", "Review decision (approved, needs_script_revision, find_more_assets, reassemble)")
	cmd.Flags().StringVarP(&notes, "notes", "m", "", "Notes for the pipeline")
	_ = cmd.MarkFlagRequired("decision")
	return cmd
}
