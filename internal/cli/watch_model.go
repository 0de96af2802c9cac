package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shorts-studio/internal/media"
	"shorts-studio/internal/model"
	"shorts-studio/internal/studio"
	"shorts-studio/internal/studioapi"
)

type watchMode int

const (
	watchModeBrowse watchMode = iota
	watchModeCompose
	watchModeReview
)

type watchPane int

const (
	watchPaneJobs watchPane = iota
	watchPaneLibrary
)

// selectionSettleDelay debounces the refresh that follows cursor movement.
const selectionSettleDelay = 250 * time.Millisecond

type watchModel struct {
	ctx      context.Context
	sync     *studio.Synchronizer
	review   *studio.ReviewController
	resolver media.Resolver

	state     studio.State
	width     int
	height    int
	mode      watchMode
	pane      watchPane
	libCursor int

	composer    textinput.Model
	notes       textarea.Model
	decisions   []model.ReviewDecision
	decisionIdx int
	reviewJobID string
	submitting  bool
	spinner     spinner.Model

	statusMessage string
}

// stateMsg carries a synchronizer snapshot into the program.
type stateMsg struct {
	state studio.State
}

type actionDoneMsg struct {
	message   string
	err       error
	closeForm bool
}

type refreshDoneMsg struct {
	manual bool
	err    error
}

type selectionSettledMsg struct {
	jobID string
}

func newWatchModel(ctx context.Context, sync *studio.Synchronizer, resolver media.Resolver) watchModel {
	composer := textinput.New()
	composer.Placeholder = "Topic, e.g. Kyoto hidden temples"
	composer.CharLimit = studioapi.MaxTopicLength
	composer.Width = 60

	notes := textarea.New()
	notes.Placeholder = "Notes for the pipeline (optional)"
	notes.ShowLineNumbers = false
	notes.SetWidth(60)
	notes.SetHeight(4)

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(watchMutedStyle))

	return watchModel{
		ctx:      ctx,
		sync:     sync,
		review:   studio.NewReviewController(sync),
		resolver: resolver,
		state:    sync.Snapshot(),
		mode:     watchModeBrowse,
		pane:     watchPaneJobs,
		composer: composer,
		notes:    notes,
		spinner:  spin,
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputW := clampInt(m.width-8, 20, 100)
		m.composer.Width = inputW
		m.notes.SetWidth(inputW)
		return m, nil
	case stateMsg:
		m.applyState(msg.state)
		return m, nil
	case actionDoneMsg:
		m.submitting = false
		m.applyState(m.sync.Snapshot())
		if msg.err != nil {
			m.statusMessage = "error: " + msg.err.Error()
			return m, nil
		}
		m.statusMessage = msg.message
		if msg.closeForm {
			m.closeForm()
		}
		return m, nil
	case refreshDoneMsg:
		m.applyState(m.sync.Snapshot())
		if msg.manual && msg.err == nil {
			m.statusMessage = "refreshed"
		}
		return m, nil
	case selectionSettledMsg:
		if msg.jobID != "" && msg.jobID == m.state.SelectedJobID {
			return m, refreshCmd(m.ctx, m.sync, false)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch m.mode {
		case watchModeCompose:
			return m.updateCompose(msg)
		case watchModeReview:
			return m.updateReview(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m.forwardToInput(msg)
}

// applyState keeps the newest snapshot; goroutine delivery may reorder them.
func (m *watchModel) applyState(st studio.State) {
	if st.Version < m.state.Version {
		return
	}
	m.state = st
	if m.libCursor >= len(st.Library) {
		m.libCursor = len(st.Library) - 1
	}
	if m.libCursor < 0 {
		m.libCursor = 0
	}
}

func (m watchModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.pane == watchPaneJobs {
			m.pane = watchPaneLibrary
		} else {
			m.pane = watchPaneJobs
		}
		return m, nil
	case "up", "k":
		return m.moveCursor(-1)
	case "down", "j":
		return m.moveCursor(1)
	case "r":
		m.statusMessage = "refreshing..."
		return m, refreshCmd(m.ctx, m.sync, true)
	case "n":
		m.mode = watchModeCompose
		m.composer.Reset()
		m.statusMessage = ""
		return m, m.composer.Focus()
	case "a":
		return m.openReview()
	case "enter":
		if m.pane == watchPaneLibrary && m.libCursor < len(m.state.Library) {
			item := m.state.Library[m.libCursor]
			if u := m.resolver.Resolve(libraryVideoPath(item)); u != "" {
				m.statusMessage = "video: " + u
			} else {
				m.statusMessage = "no video for this item"
			}
			return m, nil
		}
		if m.pane == watchPaneJobs {
			return m.openReview()
		}
	}
	return m, nil
}

func (m watchModel) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if m.pane == watchPaneLibrary {
		if len(m.state.Library) == 0 {
			return m, nil
		}
		m.libCursor = clampInt(m.libCursor+delta, 0, len(m.state.Library)-1)
		return m, nil
	}
	if len(m.state.Jobs) == 0 {
		return m, nil
	}
	idx := m.state.SelectedIndex()
	if idx < 0 {
		idx = 0
	} else {
		idx = clampInt(idx+delta, 0, len(m.state.Jobs)-1)
	}
	jobID := m.state.Jobs[idx].JobID
	if jobID == m.state.SelectedJobID {
		return m, nil
	}
	m.sync.SelectJob(jobID)
	m.applyState(m.sync.Snapshot())
	return m, tea.Tick(selectionSettleDelay, func(time.Time) tea.Msg {
		return selectionSettledMsg{jobID: jobID}
	})
}

func (m watchModel) openReview() (tea.Model, tea.Cmd) {
	d, ok := m.state.Detail()
	if !ok {
		m.statusMessage = "select a job first"
		return m, nil
	}
	if d.Status != model.StatusWaitingReview {
		m.statusMessage = "job is " + model.StatusLabel(d.Status) + ", not waiting for review"
		return m, nil
	}
	m.mode = watchModeReview
	m.reviewJobID = d.JobID
	m.decisions = d.Review().AllowedDecisions()
	m.decisionIdx = 0
	m.notes.Reset()
	m.statusMessage = ""
	return m, m.notes.Focus()
}

func (m watchModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeForm()
		m.statusMessage = "cancelled"
		return m, nil
	case "enter":
		topic := strings.TrimSpace(m.composer.Value())
		m.submitting = true
		m.statusMessage = "creating job..."
		return m, createJobCmd(m.ctx, m.sync, topic)
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m watchModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeForm()
		m.statusMessage = "review cancelled"
		return m, nil
	case "tab":
		if len(m.decisions) > 0 {
			m.decisionIdx = (m.decisionIdx + 1) % len(m.decisions)
		}
		return m, nil
	case "shift+tab":
		if len(m.decisions) > 0 {
			m.decisionIdx = (m.decisionIdx - 1 + len(m.decisions)) % len(m.decisions)
		}
		return m, nil
	case "ctrl+s":
		if len(m.decisions) == 0 {
			return m, nil
		}
		decision := m.decisions[m.decisionIdx]
		m.submitting = true
		m.statusMessage = "submitting " + decision.Label() + "..."
		return m, submitReviewCmd(m.ctx, m.review, m.reviewJobID, decision, m.notes.Value())
	}
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m watchModel) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case watchModeCompose:
		m.composer, cmd = m.composer.Update(msg)
	case watchModeReview:
		m.notes, cmd = m.notes.Update(msg)
	}
	return m, cmd
}

func (m *watchModel) closeForm() {
	m.mode = watchModeBrowse
	m.composer.Blur()
	m.composer.Reset()
	m.notes.Blur()
	m.notes.Reset()
	m.reviewJobID = ""
	m.decisions = nil
	m.decisionIdx = 0
}

func refreshCmd(ctx context.Context, sync *studio.Synchronizer, manual bool) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{manual: manual, err: sync.Refresh(ctx)}
	}
}

func createJobCmd(ctx context.Context, sync *studio.Synchronizer, topic string) tea.Cmd {
	return func() tea.Msg {
		job, err := sync.CreateJob(ctx, topic)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{message: "job " + job.JobID + " created", closeForm: true}
	}
}

func submitReviewCmd(ctx context.Context, rc *studio.ReviewController, jobID string, decision model.ReviewDecision, notes string) tea.Cmd {
	return func() tea.Msg {
		if _, err := rc.Submit(ctx, jobID, decision, notes); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{message: decision.Label() + " submitted for " + jobID, closeForm: true}
	}
}
