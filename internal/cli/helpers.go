package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shorts-studio/internal/model"
)

// statusTitle renders a status for people: "waiting_review" becomes
// "Waiting Review".
func statusTitle(status string) string {
	return cases.Title(language.English).String(model.StatusLabel(status))
}

func kv(k, v string) string {
	return fmt.Sprintf("%s: %s", k, v)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func defaultIfEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// relativeTime formats t like "3 minutes ago"; zero times render as "-".
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func listWindow(total, cursor, maxRows int) (int, int) {
	if total <= maxRows {
		return 0, total
	}
	half := maxRows / 2
	start := cursor - half
	if start < 0 {
		start = 0
	}
	end := start + maxRows
	if end > total {
		end = total
		start = end - maxRows
	}
	return start, end
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

func wrapOrTrim(s string, width int) string {
	if width <= 0 {
		return s
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return truncateRunes(s, width)
}

// firstLines keeps at most n lines of s, marking the cut.
func firstLines(s string, n int) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) <= n {
		return lines
	}
	out := append([]string{}, lines[:n]...)
	return append(out, fmt.Sprintf("… (%d more lines)", len(lines)-n))
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func stdinIsTTY() bool {
	return isTerminal(os.Stdin)
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(w io.Writer) bool {
	return isTerminal(w)
}
