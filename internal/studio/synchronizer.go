package studio

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"shorts-studio/internal/model"
	"shorts-studio/internal/studioapi"
)

// DefaultInterval is the polling period of Run.
const DefaultInterval = 3 * time.Second

var ErrEmptyTopic = errors.New("topic must not be empty")

// JobStore is the remote job store as seen by the synchronizer.
// *studioapi.Client satisfies it.
type JobStore interface {
	CreateJob(ctx context.Context, topic string) (model.JobSummary, error)
	ListJobs(ctx context.Context) ([]model.JobSummary, error)
	GetJob(ctx context.Context, jobID string) (model.JobDetail, error)
	SubmitReview(ctx context.Context, jobID string, decision model.ReviewDecision, notes string) (model.JobSummary, error)
	ListLibrary(ctx context.Context) ([]model.LibraryItem, error)
}

// Synchronizer owns the client-side view of the job store: the job list, the
// library, the selected job and its detail, and the last error. All mutation
// goes through its methods; observers get snapshots via OnChange.
type Synchronizer struct {
	store    JobStore
	logger   *slog.Logger
	interval time.Duration

	mu           sync.Mutex
	state        State
	version      uint64
	selectionGen uint64
	roundSeq     uint64
	appliedSeq   uint64
	onChange     func(State)

	inflight atomic.Int32
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

func WithInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSynchronizer(store JobStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not block.
func (s *Synchronizer) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Synchronizer) Interval() time.Duration {
	return s.interval
}

// SelectJob changes the selection without any I/O; the next refresh loads
// its detail.
func (s *Synchronizer) SelectJob(jobID string) {
	s.update(func(st *State) {
		if st.SelectedJobID != jobID {
			s.logger.Debug("job selected", "job_id", jobID, "previous", st.SelectedJobID)
		}
		st.SelectedJobID = jobID
		s.selectionGen++
	})
}

// Run refreshes immediately and then every interval until ctx is done.
// Ticks that arrive while another round is in flight are skipped.
func (s *Synchronizer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_ = s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.inflight.Load() > 0 {
				s.logger.Debug("refresh skipped; previous round still running")
				continue
			}
			_ = s.Refresh(ctx)
		}
	}
}

// Refresh runs one snapshot-and-reconcile round and returns the error it
// surfaced, if any. A job that vanished between the list and detail fetch is
// not an error.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.inflight.Add(1)
	s.mu.Lock()
	s.roundSeq++
	seq := s.roundSeq
	gen := s.selectionGen
	selected := s.state.SelectedJobID
	s.state.Refreshing = true
	s.version++
	snap, notify := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
	defer s.finishRound()

	var jobs []model.JobSummary
	var library []model.LibraryItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.ListJobs(gctx)
		if err != nil {
			return err
		}
		jobs = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.ListLibrary(gctx)
		if err != nil {
			return err
		}
		library = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("refresh failed", "error", err)
		s.applyRound(seq, func(st *State) {
			st.LastError = err.Error()
		})
		return err
	}

	resolved := reconcileSelection(jobs, selected)
	if resolved == "" {
		s.applyRound(seq, func(st *State) {
			s.storeListsLocked(st, jobs, library)
			if s.selectionGen == gen {
				st.SelectedJobID = ""
				st.SelectedDetail = nil
			}
			st.LastError = ""
			st.LastRefresh = time.Now()
		})
		return nil
	}

	detail, err := s.store.GetJob(ctx, resolved)
	switch {
	case err == nil:
		s.applyRound(seq, func(st *State) {
			s.storeListsLocked(st, jobs, library)
			if s.selectionGen == gen {
				st.SelectedJobID = resolved
				d := detail
				st.SelectedDetail = &d
			}
			st.LastError = ""
			st.LastRefresh = time.Now()
		})
		return nil
	case studioapi.IsNotFound(err):
		fallback := reconcileSelection(jobs, "")
		s.logger.Info("selected job vanished; falling back", "job_id", resolved, "fallback", fallback)
		s.applyRound(seq, func(st *State) {
			s.storeListsLocked(st, jobs, library)
			if s.selectionGen == gen {
				st.SelectedJobID = fallback
				st.SelectedDetail = nil
			}
			st.LastError = ""
			st.LastRefresh = time.Now()
		})
		return nil
	default:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("job detail fetch failed", "job_id", resolved, "error", err)
		s.applyRound(seq, func(st *State) {
			s.storeListsLocked(st, jobs, library)
			if s.selectionGen == gen {
				st.SelectedJobID = resolved
			}
			st.LastError = err.Error()
		})
		return err
	}
}

// CreateJob enqueues a new pipeline run, selects it and refreshes.
func (s *Synchronizer) CreateJob(ctx context.Context, topic string) (model.JobSummary, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		s.setError(ErrEmptyTopic)
		return model.JobSummary{}, ErrEmptyTopic
	}

	s.update(func(st *State) { st.Busy = true })
	defer s.update(func(st *State) { st.Busy = false })

	job, err := s.store.CreateJob(ctx, topic)
	if err != nil {
		s.logger.Warn("create job failed", "topic", topic, "error", err)
		s.setError(err)
		return model.JobSummary{}, err
	}
	s.logger.Info("job created", "job_id", job.JobID, "topic", topic)
	s.SelectJob(job.JobID)
	_ = s.Refresh(ctx)
	return job, nil
}

func (s *Synchronizer) setError(err error) {
	s.update(func(st *State) {
		st.LastError = err.Error()
	})
}

// update applies fn under the lock and notifies observers.
func (s *Synchronizer) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.version++
	snap, notify := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

// applyRound commits the result of round seq unless a round that started
// later has already been committed; the most recent reconciliation wins.
func (s *Synchronizer) applyRound(seq uint64, fn func(st *State)) {
	s.mu.Lock()
	if seq < s.appliedSeq {
		s.mu.Unlock()
		s.logger.Debug("discarding stale refresh round", "round", seq, "applied", s.appliedSeq)
		return
	}
	s.appliedSeq = seq
	fn(&s.state)
	s.version++
	snap, notify := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

func (s *Synchronizer) storeListsLocked(st *State, jobs []model.JobSummary, library []model.LibraryItem) {
	prev := make(map[string]string, len(st.Jobs))
	for _, j := range st.Jobs {
		prev[j.JobID] = j.Status
	}
	for _, j := range jobs {
		from, seen := prev[j.JobID]
		if !seen {
			continue
		}
		if err := model.CheckTransition(j.JobID, from, j.Status); err != nil {
			s.logger.Warn("job status changed unexpectedly", "job_id", j.JobID, "from", from, "to", j.Status)
		}
	}
	st.Jobs = jobs
	st.Library = library
	// A selection made while the round was in flight survives only if it is
	// still listed.
	st.SelectedJobID = reconcileSelection(jobs, st.SelectedJobID)
}

// finishRound derives Refreshing from the live counter under the lock, so a
// round that starts while another finishes is never reported idle.
func (s *Synchronizer) finishRound() {
	s.inflight.Add(-1)
	s.update(func(st *State) { st.Refreshing = s.inflight.Load() > 0 })
}

func (s *Synchronizer) snapshotLocked() State {
	snap := s.state.clone()
	snap.Version = s.version
	return snap
}
