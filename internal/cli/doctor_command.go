package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shorts-studio/internal/model"
	"shorts-studio/internal/studioapi"
)

type doctorResult struct {
	OK     bool          `json:"ok"`
	Checks []doctorCheck `json:"checks"`
}

// doctorCheck is one line of the report. Advisory checks render as WARN
// when they fail and never fail the run.
type doctorCheck struct {
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Advisory bool   `json:"advisory,omitempty"`
	Message  string `json:"message"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and job store connectivity",
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

			checks := make([]doctorCheck, 0, 5)
			cfgMessage := ctx.configPath
			if !ctx.configExists {
				cfgMessage += " not found, using defaults"
			}
			checks = append(checks, doctorCheck{Name: "config", OK: true, Message: cfgMessage})

			health, err := client.Health(cmd.Context())
			checks = append(checks, doctorCheck{
				Name:    "api:health",
				OK:      err == nil && strings.EqualFold(health.Status, "ok"),
				Message: healthMessage(client.BaseURL(), health.Status, err),
			})

			deps, err := client.SystemDependencies(cmd.Context())
			checks = append(checks, mediaToolsCheck(deps, err))

			jobs, err := client.ListJobs(cmd.Context())
			checks = append(checks, countCheck("api:jobs", len(jobs), "job(s)", err))

			items, err := client.ListLibrary(cmd.Context())
			checks = append(checks, countCheck("api:library", len(items), "published video(s)", err))

			dirOK, dirMessage := ensureWritableDir(cfg.DownloadDir)
			checks = append(checks, doctorCheck{Name: "directory:downloads", OK: dirOK, Message: dirMessage})

			res := doctorResult{OK: true, Checks: checks}
			for _, c := range checks {
				if !c.OK && !c.Advisory {
					res.OK = false
					break
				}
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, res); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, c := range res.Checks {
					kind := statusOK
					switch {
					case !c.OK && c.Advisory:
						kind = statusWarn
					case !c.OK:
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(c.Name, kind, c.Message, colorize))
				}
			}
			if !res.OK {
				return errors.New("doctor checks failed")
			}
			if !ctx.jsonOutput() {
				fmt.Fprintln(cmd.OutOrStdout(), "doctor: all checks passed")
			}
			return nil
		},
	}
}

func healthMessage(base, status string, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%s reports %q", base, status)
}

// mediaToolsCheck summarizes the pipeline host's ffmpeg/ffprobe/imagemagick
// report. Servers without the endpoint only produce a warning.
func mediaToolsCheck(report model.DependencyReport, err error) doctorCheck {
	check := doctorCheck{Name: "api:media-tools", Advisory: true}
	if err != nil {
		check.Message = err.Error()
		return check
	}
	parts := make([]string, 0, len(report.Dependencies))
	for _, dep := range report.Dependencies {
		state := "ok"
		switch {
		case !dep.Found && dep.Required:
			state = "missing"
		case !dep.Found:
			state = "missing (optional)"
		}
		parts = append(parts, dep.Name+" "+state)
	}
	check.OK = report.Overall == "ok"
	check.Message = defaultIfEmpty(strings.Join(parts, ", "), "no tools reported")
	if !check.OK {
		check.Message = report.Overall + ": " + check.Message
	}
	return check
}

func countCheck(name string, n int, noun string, err error) doctorCheck {
	if err != nil {
		msg := err.Error()
		if code := studioapi.StatusCode(err); code != 0 {
			msg = "HTTP " + strconv.Itoa(code) + ": " + msg
		}
		return doctorCheck{Name: name, OK: false, Message: msg}
	}
	return doctorCheck{Name: name, OK: true, Message: fmt.Sprintf("%d %s", n, noun)}
}

func ensureWritableDir(path string) (bool, string) {
	if strings.TrimSpace(path) == "" {
		return false, "empty path"
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, err.Error()
	}
	f, err := os.CreateTemp(path, "shorts-studio-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return true, path + " is writable"
}
