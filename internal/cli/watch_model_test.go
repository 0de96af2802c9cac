package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"shorts-studio/internal/media"
	"shorts-studio/internal/model"
	"shorts-studio/internal/studio"
	"shorts-studio/internal/studioapi"
)

func newTestWatchModel(t *testing.T, api *fakeAPI, baseURL string) watchModel {
	t.Helper()
	sync := studio.NewSynchronizer(studioapi.NewClient(baseURL))
	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	m := newWatchModel(context.Background(), sync, media.NewResolver(baseURL))
	m.width, m.height = 120, 40
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m watchModel, msg tea.Msg) (watchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(watchModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return wm, cmd
}

func TestWatchIgnoresOlderSnapshots(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.addJob("j1", "Deep sea creatures", model.StatusRunning, nil)
	m := newTestWatchModel(t, api, srv.URL)

	current := m.state.Version
	stale := m.state
	stale.Version = current - 1
	stale.Jobs = nil

	m2, _ := press(t, m, stateMsg{state: stale})
	if len(m2.state.Jobs) != 1 {
		t.Fatalf("stale snapshot replaced newer state: %+v", m2.state.Jobs)
	}
}

func TestWatchDownMovesSelection(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.addJob("j1", "Deep sea creatures", model.StatusRunning, nil)
	api.addJob("j2", "Kyoto hidden temples", model.StatusQueued, nil)
	m := newTestWatchModel(t, api, srv.URL)
	if m.state.SelectedJobID != "j1" {
		t.Fatalf("expected j1 selected after first refresh, got %q", m.state.SelectedJobID)
	}

	m2, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m2.state.SelectedJobID != "j2" {
		t.Fatalf("expected j2 selected, got %q", m2.state.SelectedJobID)
	}
	if cmd == nil {
		t.Fatal("expected a settle command after moving")
	}
	if _, ok := m2.state.Detail(); ok {
		t.Fatal("detail for j1 must not be shown for j2")
	}

	m3, cmd := press(t, m2, selectionSettledMsg{jobID: "j2"})
	if cmd == nil {
		t.Fatal("expected refresh once the selection settled")
	}
	m4, _ := press(t, m3, cmd())
	d, ok := m4.state.Detail()
	if !ok || d.JobID != "j2" {
		t.Fatalf("expected j2 detail after refresh, got %+v ok=%v", d, ok)
	}

	m5, _ := press(t, m4, tea.KeyMsg{Type: tea.KeyDown})
	if m5.state.SelectedJobID != "j2" {
		t.Fatalf("cursor should stop at the last job, got %q", m5.state.SelectedJobID)
	}
}

func TestWatchSettledMessageForOldSelectionIsIgnored(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.addJob("j1", "Deep sea creatures", model.StatusRunning, nil)
	api.addJob("j2", "Kyoto hidden temples", model.StatusQueued, nil)
	m := newTestWatchModel(t, api, srv.URL)

	_, cmd := press(t, m, selectionSettledMsg{jobID: "j2"})
	if cmd != nil {
		t.Fatal("a settle message for a job that is no longer selected must not refresh")
	}
}

func TestWatchComposeCreatesJob(t *testing.T) {
	api, srv := newFakeAPI(t)
	m := newTestWatchModel(t, api, srv.URL)

	m, _ = press(t, m, keyRunes("n"))
	if m.mode != watchModeCompose {
		t.Fatalf("expected compose mode, got %v", m.mode)
	}
	m, _ = press(t, m, keyRunes("Kyoto hidden temples"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.submitting {
		t.Fatal("expected create command")
	}

	m, _ = press(t, m, cmd())
	if m.mode != watchModeBrowse {
		t.Fatalf("expected form to close, mode=%v", m.mode)
	}
	if m.statusMessage != "job j1 created" {
		t.Fatalf("unexpected status: %q", m.statusMessage)
	}
	if m.state.SelectedJobID != "j1" {
		t.Fatalf("expected new job selected, got %q", m.state.SelectedJobID)
	}
	if !strings.Contains(m.View(), "Kyoto hidden temples") {
		t.Fatal("expected new job in view")
	}
}

func TestWatchComposeEmptyTopicKeepsForm(t *testing.T) {
	api, srv := newFakeAPI(t)
	m := newTestWatchModel(t, api, srv.URL)

	m, _ = press(t, m, keyRunes("n"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, cmd())
	if m.mode != watchModeCompose {
		t.Fatal("form should stay open after a rejected topic")
	}
	if m.state.LastError != studio.ErrEmptyTopic.Error() {
		t.Fatalf("expected empty topic error, got %q", m.state.LastError)
	}
	if api.nextID != 0 {
		t.Fatal("no job should have been created")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != watchModeBrowse {
		t.Fatal("esc should close the form")
	}
}

func TestWatchReviewRequiresWaitingJob(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.addJob("j1", "Deep sea creatures", model.StatusRunning, nil)
	m := newTestWatchModel(t, api, srv.URL)

	m, _ = press(t, m, keyRunes("a"))
	if m.mode != watchModeBrowse {
		t.Fatal("review box must not open for a running job")
	}
	if !strings.Contains(m.statusMessage, "not waiting for review") {
		t.Fatalf("unexpected status: %q", m.statusMessage)
	}
}

func TestWatchReviewSubmitsOfferedDecision(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.addJob("j1", "Kyoto hidden temples", model.StatusWaitingReview, map[string]any{"script": "draft"})
	d := api.details["j1"]
	d.ReviewPayload = map[string]any{
		"message": "Review the final video",
		"options": []any{"approved", "reassemble"},
	}
	api.details["j1"] = d
	m := newTestWatchModel(t, api, srv.URL)

	m, _ = press(t, m, keyRunes("a"))
	if m.mode != watchModeReview {
		t.Fatalf("expected review mode, got %v", m.mode)
	}
	if len(m.decisions) != 2 {
		t.Fatalf("expected offered decisions only, got %v", m.decisions)
	}
	if !strings.Contains(m.View(), "Review the final video") {
		t.Fatal("expected review message in view")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, keyRunes("more b-roll"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	m, _ = press(t, m, cmd())

	if m.mode != watchModeBrowse {
		t.Fatalf("expected review box to close, mode=%v", m.mode)
	}
	if api.reviewCount() != 1 {
		t.Fatalf("expected one review, got %d", api.reviewCount())
	}
	if got := api.reviews[0]; got["human_decision"] != "reassemble" || got["review_notes"] != "more b-roll" {
		t.Fatalf("unexpected review body: %v", got)
	}
	det, ok := m.state.Detail()
	if !ok || det.Status != model.StatusRunning {
		t.Fatalf("expected refreshed running detail, got %+v ok=%v", det, ok)
	}
}

func TestWatchLibraryEnterShowsResolvedURL(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.library = []model.LibraryItem{{Topic: strPtr("Kyoto"), FinalVideoURL: strPtr("/media/output/k.mp4")}}
	m := newTestWatchModel(t, api, srv.URL)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.statusMessage != "video: "+srv.URL+"/media/output/k.mp4" {
		t.Fatalf("unexpected status: %q", m.statusMessage)
	}
}

func TestWatchLibraryEnterWithoutServedVideo(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.library = []model.LibraryItem{{Topic: strPtr("Outside"), FinalVideo: strPtr("/srv/other/short_final_x.mp4")}}
	m := newTestWatchModel(t, api, srv.URL)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.statusMessage != "no video for this item" {
		t.Fatalf("unexpected status: %q", m.statusMessage)
	}
}

func TestWatchViewShowsLastError(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.addJob("j1", "Deep sea creatures", model.StatusRunning, nil)
	m := newTestWatchModel(t, api, srv.URL)

	api.mu.Lock()
	api.failList = true
	api.mu.Unlock()
	m, cmd := press(t, m, keyRunes("r"))
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	m, _ = press(t, m, cmd())

	view := m.View()
	if !strings.Contains(view, "error:") {
		t.Fatalf("expected error line in view:\n%s", view)
	}
	if !strings.Contains(view, "Deep sea creatures") {
		t.Fatal("previous jobs should stay visible after a failed refresh")
	}
}
