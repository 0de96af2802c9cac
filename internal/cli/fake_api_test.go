package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"shorts-studio/internal/config"
	"shorts-studio/internal/model"
)

// fakeAPI is an in-process job store serving the endpoints the client uses.
type fakeAPI struct {
	mu       sync.Mutex
	deps     *model.DependencyReport
	jobs     []model.JobSummary
	details  map[string]model.JobDetail
	library  []model.LibraryItem
	files    map[string][]byte
	reviews  []map[string]string
	failList bool
	nextID   int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{
		details: map[string]model.JobDetail{},
		files:   map[string][]byte{},
	}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) addJob(id, topic, status string, state map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, model.JobSummary{JobID: id, Topic: topic, Status: status})
	f.details[id] = model.JobDetail{JobID: id, ThreadID: "t-" + id, Topic: topic, Status: status, State: state}
}

func (f *fakeAPI) reviewCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reviews)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/health":
		writeTestJSON(w, map[string]string{"status": "ok", "time": "2025-03-01T08:30:00+00:00"})
	case path == "/api/system/dependencies":
		if f.deps == nil {
			http.NotFound(w, r)
			return
		}
		writeTestJSON(w, f.deps)
	case path == "/api/jobs" && r.Method == http.MethodGet:
		if f.failList {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeTestJSON(w, f.jobs)
	case path == "/api/jobs" && r.Method == http.MethodPost:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		job := model.JobSummary{JobID: fmt.Sprintf("j%d", f.nextID), Topic: body["topic"], Status: model.StatusQueued}
		f.jobs = append([]model.JobSummary{job}, f.jobs...)
		f.details[job.JobID] = model.JobDetail{JobID: job.JobID, Topic: job.Topic, Status: job.Status, State: map[string]any{}}
		writeTestJSON(w, job)
	case strings.HasSuffix(path, "/review") && r.Method == http.MethodPost:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/jobs/"), "/review")
		d, ok := f.details[id]
		if !ok {
			http.Error(w, `{"detail":"job not found"}`, http.StatusNotFound)
			return
		}
		if d.Status != model.StatusWaitingReview {
			http.Error(w, `{"detail":"job is not waiting for review"}`, http.StatusConflict)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.reviews = append(f.reviews, body)
		next := model.StatusRunning
		if body["human_decision"] == string(model.DecisionApproved) {
			next = model.StatusCompleted
		}
		f.setStatusLocked(id, next)
		writeTestJSON(w, f.details[id].Summary())
	case strings.HasPrefix(path, "/api/jobs/"):
		id := strings.TrimPrefix(path, "/api/jobs/")
		d, ok := f.details[id]
		if !ok {
			http.Error(w, `{"detail":"job not found"}`, http.StatusNotFound)
			return
		}
		writeTestJSON(w, d)
	case path == "/api/library":
		writeTestJSON(w, f.library)
	case strings.HasPrefix(path, "/media/"):
		data, ok := f.files[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) setStatusLocked(id, status string) {
	for i := range f.jobs {
		if f.jobs[i].JobID == id {
			f.jobs[i].Status = status
		}
	}
	d := f.details[id]
	d.Status = status
	f.details[id] = d
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// isolateCLIEnv points HOME at a temp dir and clears overrides so the
// developer's own configuration never leaks into a test.
func isolateCLIEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		config.EnvAPIBase, config.EnvWebAPIBase, config.EnvPollInterval,
		config.EnvRequestTimeout, config.EnvDownloadDir, config.EnvLogLevel, config.EnvLogFormat,
	} {
		t.Setenv(key, "")
	}
	return home
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := RunContext(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func strPtr(s string) *string { return &s }
