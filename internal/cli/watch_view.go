package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shorts-studio/internal/model"
)

var (
	watchTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	watchMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	watchOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	watchPanelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	watchFocusStyle  = watchPanelStyle.BorderForeground(lipgloss.Color("62"))
	watchSelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	watchDimSelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("238"))
)

var statusColors = map[string]lipgloss.Color{
	model.StatusQueued:        lipgloss.Color("245"),
	model.StatusRunning:       lipgloss.Color("39"),
	model.StatusWaitingReview: lipgloss.Color("214"),
	model.StatusCompleted:     lipgloss.Color("42"),
	model.StatusFailed:        lipgloss.Color("203"),
}

func statusBadge(status string) string {
	style := lipgloss.NewStyle()
	if c, ok := statusColors[status]; ok {
		style = style.Foreground(c)
	}
	return style.Render(statusTitle(status))
}

func (m watchModel) View() string {
	if m.width <= 0 {
		m.width = 100
	}
	if m.height <= 0 {
		m.height = 30
	}

	header := m.renderHeader()
	var body string
	if m.width < 90 {
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderJobsPanel(m.width),
			m.renderLibraryPanel(m.width),
			m.renderDetailPanel(m.width),
		)
	} else {
		leftW := clampInt(m.width*2/5, 34, 60)
		rightW := m.width - leftW - 1
		left := lipgloss.JoinVertical(lipgloss.Left, m.renderJobsPanel(leftW), m.renderLibraryPanel(leftW))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderDetailPanel(rightW))
	}

	parts := []string{header, body}
	switch m.mode {
	case watchModeCompose:
		parts = append(parts, m.renderComposer(m.width))
	case watchModeReview:
		parts = append(parts, m.renderReviewBox(m.width))
	}
	parts = append(parts, m.renderStatusLine(m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m watchModel) renderHeader() string {
	title := watchTitleStyle.Render("shorts-studio")
	activity := ""
	if m.state.Busy || m.state.Refreshing || m.submitting {
		activity = " " + m.spinner.View()
	}
	var hints string
	switch m.mode {
	case watchModeCompose:
		hints = "enter: create | esc: cancel"
	case watchModeReview:
		hints = "tab/shift+tab: decision | ctrl+s: submit | esc: cancel"
	default:
		hints = "up/down: move | tab: jobs/library | n: new job | a: review | r: refresh | q: quit"
	}
	return title + activity + "  " + watchMutedStyle.Render(m.resolver.Base) + "\n" + watchMutedStyle.Render(hints)
}

func (m watchModel) renderJobsPanel(width int) string {
	jobs := m.state.Jobs
	maxRows := clampInt(m.height/2-4, 3, 18)
	selected := m.state.SelectedIndex()
	start, end := listWindow(len(jobs), maxInt(selected, 0), maxRows)

	lines := []string{watchTitleStyle.Render(fmt.Sprintf("Jobs (%d)", len(jobs)))}
	if len(jobs) == 0 {
		lines = append(lines, watchMutedStyle.Render("No jobs yet. Press n to create one."))
	}
	if start > 0 {
		lines = append(lines, watchMutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		j := jobs[i]
		line := truncateRunes(fmt.Sprintf("%-15s %s", statusTitle(j.Status), j.Topic), maxInt(width-6, 10))
		if i == selected {
			style := watchDimSelStyle
			if m.pane == watchPaneJobs {
				style = watchSelStyle
			}
			line = style.Width(maxInt(width-4, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	if end < len(jobs) {
		lines = append(lines, watchMutedStyle.Render("..."))
	}
	return m.panelStyle(watchPaneJobs).Width(width).Render(strings.Join(lines, "\n"))
}

func (m watchModel) renderLibraryPanel(width int) string {
	items := m.state.Library
	maxRows := clampInt(m.height/2-8, 2, 10)
	start, end := listWindow(len(items), m.libCursor, maxRows)

	lines := []string{watchTitleStyle.Render(fmt.Sprintf("Library (%d)", len(items)))}
	if len(items) == 0 {
		lines = append(lines, watchMutedStyle.Render("Published videos appear here."))
	}
	for i := start; i < end; i++ {
		item := items[i]
		line := fmt.Sprintf("%s  %s", defaultIfEmpty(item.TopicValue(), "(untitled)"), watchMutedStyle.Render(libraryCreated(item)))
		line = truncateRunes(line, maxInt(width-6, 10))
		if m.pane == watchPaneLibrary && i == m.libCursor {
			line = watchSelStyle.Width(maxInt(width-4, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	return m.panelStyle(watchPaneLibrary).Width(width).Render(strings.Join(lines, "\n"))
}

func (m watchModel) renderDetailPanel(width int) string {
	lines := []string{}
	d, ok := m.state.Detail()
	switch {
	case ok:
		lines = append(lines, watchTitleStyle.Render(d.Topic), statusBadge(d.Status), "")
		for _, line := range jobDetailLines(d, m.resolver, clampInt(m.height-24, 4, 20)) {
			lines = append(lines, wrapOrTrim(line, maxInt(width-6, 12)))
		}
		if d.Status == model.StatusWaitingReview && m.mode != watchModeReview {
			lines = append(lines, "", watchOKStyle.Render("Waiting for your review. Press a to decide."))
		}
	case m.state.SelectedJobID != "":
		lines = append(lines, "Loading "+m.state.SelectedJobID+"...")
	default:
		lines = append(lines, "No job selected.")
	}
	return watchPanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m watchModel) renderComposer(width int) string {
	content := watchTitleStyle.Render("New job") + "\n" + m.composer.View()
	return watchFocusStyle.Width(width).Render(content)
}

func (m watchModel) renderReviewBox(width int) string {
	lines := []string{watchTitleStyle.Render("Review " + m.reviewJobID)}
	if d, ok := m.state.Detail(); ok && d.JobID == m.reviewJobID {
		if msg := d.Review().Message; msg != "" {
			lines = append(lines, wrapOrTrim(msg, maxInt(width-6, 12)))
		}
	}
	options := make([]string, 0, len(m.decisions))
	for i, decision := range m.decisions {
		label := " " + decision.Label() + " "
		if i == m.decisionIdx {
			label = watchSelStyle.Render(label)
		}
		options = append(options, label)
	}
	lines = append(lines, strings.Join(options, " "), m.notes.View())
	return watchFocusStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m watchModel) renderStatusLine(width int) string {
	if msg := strings.TrimSpace(m.state.LastError); msg != "" {
		return watchErrorStyle.Width(width).Render(truncateRunes("error: "+msg, maxInt(width-2, 10)))
	}
	msg := strings.TrimSpace(m.statusMessage)
	style := watchMutedStyle
	switch {
	case strings.HasPrefix(msg, "error:"):
		style = watchErrorStyle
	case strings.HasSuffix(msg, "created") || strings.Contains(msg, "submitted"):
		style = watchOKStyle
	case msg == "" && m.state.LastRefresh.IsZero():
		msg = "loading..."
	case msg == "":
		msg = "updated " + relativeTime(m.state.LastRefresh)
	}
	return style.Width(width).Render(truncateRunes(msg, maxInt(width-2, 10)))
}

func (m watchModel) panelStyle(pane watchPane) lipgloss.Style {
	if m.mode == watchModeBrowse && m.pane == pane {
		return watchFocusStyle
	}
	return watchPanelStyle
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
