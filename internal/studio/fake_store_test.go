package studio

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"shorts-studio/internal/model"
	"shorts-studio/internal/studioapi"
)

// fakeStore is an in-memory job store. Detail for a job is derived from its
// summary unless overridden.
type fakeStore struct {
	mu sync.Mutex

	jobs    []model.JobSummary
	library []model.LibraryItem
	details map[string]model.JobDetail

	listErr    error
	libraryErr error
	detailErr  map[string]error
	createErr  error
	reviewErr  error

	// onReview mutates the store after a successful review, standing in for
	// the remote pipeline resuming.
	onReview func(f *fakeStore, jobID string, decision model.ReviewDecision)
	// beforeDetail runs at the start of GetJob, between list and detail.
	beforeDetail func(f *fakeStore, jobID string)

	listCalls   int
	detailCalls []string
	createCalls int
	reviewCalls int
	nextID      int
}

func newFakeStore(jobs ...model.JobSummary) *fakeStore {
	return &fakeStore{
		jobs:      jobs,
		details:   map[string]model.JobDetail{},
		detailErr: map[string]error{},
	}
}

func job(id, status string) model.JobSummary {
	return model.JobSummary{JobID: id, Topic: "topic " + id, Status: status}
}

func notFound() error {
	return fmt.Errorf("get job: %w", &studioapi.APIError{StatusCode: http.StatusNotFound, Message: `{"detail":"job not found"}`})
}

func serverError() error {
	return fmt.Errorf("list jobs: %w", &studioapi.APIError{StatusCode: http.StatusInternalServerError, Message: "Internal Server Error"})
}

func (f *fakeStore) ListJobs(ctx context.Context) ([]model.JobSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.JobSummary{}, f.jobs...), nil
}

func (f *fakeStore) ListLibrary(ctx context.Context) ([]model.LibraryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.libraryErr != nil {
		return nil, f.libraryErr
	}
	return append([]model.LibraryItem{}, f.library...), nil
}

func (f *fakeStore) GetJob(ctx context.Context, jobID string) (model.JobDetail, error) {
	f.mu.Lock()
	hook := f.beforeDetail
	f.mu.Unlock()
	if hook != nil {
		hook(f, jobID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, jobID)
	if err := f.detailErr[jobID]; err != nil {
		return model.JobDetail{}, err
	}
	if d, ok := f.details[jobID]; ok {
		return d, nil
	}
	for _, j := range f.jobs {
		if j.JobID == jobID {
			return model.JobDetail{
				JobID:    j.JobID,
				ThreadID: "thread-" + j.JobID,
				Topic:    j.Topic,
				Status:   j.Status,
				State:    map[string]any{"script": "script for " + j.JobID},
			}, nil
		}
	}
	return model.JobDetail{}, notFound()
}

func (f *fakeStore) CreateJob(ctx context.Context, topic string) (model.JobSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return model.JobSummary{}, f.createErr
	}
	f.nextID++
	j := model.JobSummary{JobID: fmt.Sprintf("j%d", f.nextID), Topic: topic, Status: model.StatusQueued}
	f.jobs = append([]model.JobSummary{j}, f.jobs...)
	return j, nil
}

func (f *fakeStore) SubmitReview(ctx context.Context, jobID string, decision model.ReviewDecision, notes string) (model.JobSummary, error) {
	f.mu.Lock()
	f.reviewCalls++
	if f.reviewErr != nil {
		f.mu.Unlock()
		return model.JobSummary{}, f.reviewErr
	}
	hook := f.onReview
	f.mu.Unlock()
	if hook != nil {
		hook(f, jobID, decision)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.JobID == jobID {
			return j, nil
		}
	}
	return model.JobSummary{}, notFound()
}

func (f *fakeStore) setStatus(jobID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.jobs {
		if f.jobs[i].JobID == jobID {
			f.jobs[i].Status = status
		}
	}
}

func (f *fakeStore) remove(jobID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.jobs[:0]
	for _, j := range f.jobs {
		if j.JobID != jobID {
			out = append(out, j)
		}
	}
	f.jobs = out
	delete(f.details, jobID)
}

func (f *fakeStore) detailCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.detailCalls)
}
