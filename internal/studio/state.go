package studio

import (
	"time"

	"shorts-studio/internal/model"
)

// State is a snapshot of the synchronizer. Views receive copies and never
// mutate the synchronizer through them.
type State struct {
	Jobs           []model.JobSummary
	Library        []model.LibraryItem
	SelectedJobID  string
	SelectedDetail *model.JobDetail
	LastError      string
	Busy           bool
	Refreshing     bool
	LastRefresh    time.Time
	// Version increases with every change; observers drop snapshots older
	// than one they already rendered.
	Version uint64
}

// Detail returns the loaded detail only when it belongs to the current
// selection; a freshly clicked job has no detail until the next round.
func (s State) Detail() (model.JobDetail, bool) {
	if s.SelectedDetail == nil || s.SelectedJobID == "" || s.SelectedDetail.JobID != s.SelectedJobID {
		return model.JobDetail{}, false
	}
	return *s.SelectedDetail, true
}

// SelectedJob returns the summary row for the selection.
func (s State) SelectedJob() (model.JobSummary, bool) {
	idx := s.SelectedIndex()
	if idx < 0 {
		return model.JobSummary{}, false
	}
	return s.Jobs[idx], true
}

// SelectedIndex is the position of the selection in Jobs, or -1.
func (s State) SelectedIndex() int {
	return indexOfJob(s.Jobs, s.SelectedJobID)
}

// AwaitingReview reports whether the loaded detail of the selection is paused
// for a human decision.
func (s State) AwaitingReview() bool {
	d, ok := s.Detail()
	return ok && d.Status == model.StatusWaitingReview
}

func (s State) clone() State {
	out := s
	out.Jobs = append([]model.JobSummary(nil), s.Jobs...)
	out.Library = append([]model.LibraryItem(nil), s.Library...)
	if s.SelectedDetail != nil {
		d := s.SelectedDetail.Clone()
		out.SelectedDetail = &d
	}
	return out
}

func indexOfJob(jobs []model.JobSummary, id string) int {
	if id == "" {
		return -1
	}
	for i, j := range jobs {
		if j.JobID == id {
			return i
		}
	}
	return -1
}

// reconcileSelection keeps selected when it is still listed, else falls back
// to the first job, else to no selection.
func reconcileSelection(jobs []model.JobSummary, selected string) string {
	if indexOfJob(jobs, selected) >= 0 {
		return selected
	}
	if len(jobs) == 0 {
		return ""
	}
	return jobs[0].JobID
}
