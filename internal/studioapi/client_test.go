package studioapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorts-studio/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithHTTPClient(srv.Client()))
}

func TestClientCreateJobSendsTopicAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("Cache-Control"), "no-store")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"topic": "Kyoto hidden temples"}, body)

		_, _ = io.WriteString(w, `{"job_id":"j1","topic":"Kyoto hidden temples","status":"queued","created_at":"2025-03-01T08:30:00+00:00","updated_at":"2025-03-01T08:30:00+00:00"}`)
	})

	job, err := c.CreateJob(context.Background(), "  Kyoto hidden temples ")
	require.NoError(t, err)
	assert.Equal(t, "j1", job.JobID)
	assert.Equal(t, model.StatusQueued, job.Status)
}

func TestClientCreateJobRejectsEmptyTopicWithoutRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := c.CreateJob(context.Background(), "   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "topic", vErr.Field)

	_, err = c.CreateJob(context.Background(), strings.Repeat("x", MaxTopicLength+1))
	require.ErrorAs(t, err, &vErr)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestClientCreateJobRejectsOneCharacterTopic(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := c.CreateJob(context.Background(), " x ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "topic", vErr.Field)
	assert.Contains(t, vErr.Error(), "at least 2 characters")
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestClientListJobsPreservesStoreOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"job_id":"b","status":"running"},{"job_id":"a","status":"queued"}]`)
	})

	jobs, err := c.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "b", jobs[0].JobID)
	assert.Equal(t, "a", jobs[1].JobID)
}

func TestClientNon2xxCarriesStatusAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "upstream exploded")
	})

	_, err := c.ListJobs(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.False(t, IsNotFound(err))
}

func TestClientEmptyErrorBodyUsesGenericMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListLibrary(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed: 502", apiErr.Message)
}

func TestClientGetJobNotFoundIsDistinguishable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/job-a%2Fb", r.URL.RawPath)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"job not found"}`)
	})

	_, err := c.GetJob(context.Background(), "job-a/b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestClientGetJobDecodesDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"job_id":"j1","thread_id":"thread-j1","topic":"Kyoto","status":"waiting_review",
			"created_at":"2025-03-01T08:30:00+00:00","updated_at":"2025-03-01T08:35:00+00:00",
			"review_payload":{"message":"Review required","options":["approved","reassemble"]},
			"state":{"script":"Hello","clips_urls":["/media/a.mp4"]},
			"error":null
		}`)
	})

	detail, err := c.GetJob(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "thread-j1", detail.ThreadID)
	assert.Equal(t, "Hello", detail.Pipeline().Script)
	assert.Equal(t, []model.ReviewDecision{model.DecisionApproved, model.DecisionReassemble}, detail.Review().AllowedDecisions())
	assert.Empty(t, detail.ErrorMessage())
}

func TestClientSubmitReviewBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/j1/review", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"human_decision": "approved", "review_notes": ""}, body)
		_, _ = io.WriteString(w, `{"job_id":"j1","status":"running"}`)
	})

	job, err := c.SubmitReview(context.Background(), "j1", model.DecisionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRunning, job.Status)

	_, err = c.SubmitReview(context.Background(), "j1", model.ReviewDecision("publish"), "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "human_decision", vErr.Field)
}

func TestClientSystemDependencies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/system/dependencies", r.URL.Path)
		_, _ = io.WriteString(w, `{"overall":"warn","dependencies":[
			{"name":"ffmpeg","required":true,"status":"ok","found":true,"version":"ffmpeg version 6.1"},
			{"name":"imagemagick","required":false,"status":"warn","found":false,"version":null}]}`)
	})

	report, err := c.SystemDependencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "warn", report.Overall)
	require.Len(t, report.Dependencies, 2)
	require.NotNil(t, report.Dependencies[0].Version)
	assert.Equal(t, "ffmpeg version 6.1", *report.Dependencies[0].Version)
	assert.False(t, report.Dependencies[1].Found)
	assert.Nil(t, report.Dependencies[1].Version)
}

func TestClientTransportErrorIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := NewClient(base).ListJobs(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
	assert.False(t, IsNotFound(err))
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("  ").BaseURL())
	assert.Equal(t, "http://api:9000", NewClient("http://api:9000/").BaseURL())
}
