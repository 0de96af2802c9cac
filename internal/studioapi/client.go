package studioapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"shorts-studio/internal/model"
	"shorts-studio/internal/version"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Client talks to the job store. Every method performs exactly one request
// and never serves a cached response.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CreateJob(ctx context.Context, topic string) (model.JobSummary, error) {
	body := CreateJobRequest{Topic: strings.TrimSpace(topic)}
	if err := body.Validate(); err != nil {
		return model.JobSummary{}, err
	}
	var out model.JobSummary
	if err := c.do(ctx, http.MethodPost, "/api/jobs", body, &out); err != nil {
		return model.JobSummary{}, fmt.Errorf("create job: %w", err)
	}
	return out, nil
}

func (c *Client) ListJobs(ctx context.Context) ([]model.JobSummary, error) {
	out := []model.JobSummary{}
	if err := c.do(ctx, http.MethodGet, "/api/jobs", nil, &out); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

func (c *Client) GetJob(ctx context.Context, jobID string) (model.JobDetail, error) {
	var out model.JobDetail
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(jobID), nil, &out); err != nil {
		return model.JobDetail{}, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return out, nil
}

func (c *Client) SubmitReview(ctx context.Context, jobID string, decision model.ReviewDecision, notes string) (model.JobSummary, error) {
	body := ReviewRequest{HumanDecision: decision, ReviewNotes: notes}
	if err := body.Validate(); err != nil {
		return model.JobSummary{}, err
	}
	var out model.JobSummary
	if err := c.do(ctx, http.MethodPost, "/api/jobs/"+url.PathEscape(jobID)+"/review", body, &out); err != nil {
		return model.JobSummary{}, fmt.Errorf("submit review for %s: %w", jobID, err)
	}
	return out, nil
}

func (c *Client) ListLibrary(ctx context.Context) ([]model.LibraryItem, error) {
	out := []model.LibraryItem{}
	if err := c.do(ctx, http.MethodGet, "/api/library", nil, &out); err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return out, nil
}

func (c *Client) Health(ctx context.Context) (model.HealthStatus, error) {
	var out model.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return model.HealthStatus{}, fmt.Errorf("health check: %w", err)
	}
	return out, nil
}

// SystemDependencies reports the media tools available to the pipeline.
func (c *Client) SystemDependencies(ctx context.Context) (model.DependencyReport, error) {
	var out model.DependencyReport
	if err := c.do(ctx, http.MethodGet, "/api/system/dependencies", nil, &out); err != nil {
		return model.DependencyReport{}, fmt.Errorf("system dependencies: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", "shorts-studio/"+version.String())
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
